package banner

import "github.com/fatih/color"

// Version is printed in the banner
const Version = "1.0.0"

func GetBanner() string {
	cyan := color.New(color.FgCyan).SprintFunc()
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	banner := `
` + cyan(`
 ___ _       _                 _
/ __(_)_ __ | |__ _ __ _ _ ___| |__  ___
\__ \ | '_ \| / /| '_ \ '_/ _ \ '_ \/ -_)
|___/_|_| |_|_\_\| .__/_| \___/_.__/\___|
                 |_|
`) + `
          ` + red(`sinkprobe - XSS Payload Prober v`+Version) + `
                   ` + yellow(`by @Serdar715`) + `

` + cyan(`━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━`) + `
  ` + yellow(`Checks:`) + `
    • Reflected parameter payloads
    • DOM sink injection (innerHTML, fragment)
    • Execution before and after sanitizing
    • Residual executable markup
` + cyan(`━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━`) + `
`
	return banner
}
