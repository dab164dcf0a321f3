package scanner

// Page scripts. Every script is a function expression called through Surface.Eval.

const (
	jsOuterHTML = `() => document.documentElement ? document.documentElement.outerHTML : ""`

	jsHookInstall = `(flag) => {
		window[flag] = false;
		window.alert = function () {
			window[flag] = true;
			return undefined;
		};
		return true;
	}`

	jsFlagReset = `(flag) => { window[flag] = false; return true; }`

	jsFlagRead = `(flag) => window[flag] === true`

	jsBindingInstall = `(binding) => {
		window.alert = function () {
			try { window[binding]("alert"); } catch (e) {}
			return undefined;
		};
		return true;
	}`

	jsRebuildSandbox = `(id) => {
		const old = document.getElementById(id);
		if (old) old.remove();
		const box = document.createElement("div");
		box.id = id;
		box.style.position = "absolute";
		box.style.left = "-9999px";
		(document.body || document.documentElement).appendChild(box);
		return document.getElementById(id) !== null;
	}`

	jsAssignInnerHTML = `(id, html) => {
		const box = document.getElementById(id);
		if (!box) return { missing: true };
		try {
			box.innerHTML = html;
			return { ok: true };
		} catch (e) {
			return { error: String(e && e.message ? e.message : e) };
		}
	}`

	jsAssignFragment = `(id, html) => {
		const box = document.getElementById(id);
		if (!box) return { missing: true };
		try {
			const range = document.createRange();
			range.selectNodeContents(box);
			box.replaceChildren(range.createContextualFragment(html));
			return { ok: true };
		} catch (e) {
			return { error: String(e && e.message ? e.message : e) };
		}
	}`

	jsReadSandbox = `(id) => {
		const box = document.getElementById(id);
		return box ? { html: box.innerHTML } : { missing: true };
	}`

	jsSanitize = `(global, input) => {
		const purifier = window[global];
		if (!purifier || typeof purifier.sanitize !== "function") return { missing: true };
		try {
			return { clean: String(purifier.sanitize(input)) };
		} catch (e) {
			return { error: String(e && e.message ? e.message : e) };
		}
	}`
)
