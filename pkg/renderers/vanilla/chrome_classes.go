package vanilla

// ChromeClass is a typed identifier for semantic chrome CSS classes.
type ChromeClass string

const (
	ClassForm     ChromeClass = "safeland-form"
	ClassHeader   ChromeClass = "safeland-header"
	ClassGrid     ChromeClass = "safeland-grid"
	ClassField    ChromeClass = "safeland-field"
	ClassActions  ChromeClass = "safeland-actions"
	ClassErrors   ChromeClass = "safeland-errors"
	ClassWarnings ChromeClass = "safeland-warnings"
	ClassNotice   ChromeClass = "safeland-notice"
)

// chromeClasses is the class map handed to the page template.
func chromeClasses() map[string]string {
	return map[string]string{
		"form":     string(ClassForm),
		"header":   string(ClassHeader),
		"grid":     string(ClassGrid),
		"actions":  string(ClassActions),
		"errors":   string(ClassErrors),
		"warnings": string(ClassWarnings),
		"notice":   string(ClassNotice),
	}
}
