package harness

import "fmt"

// Language maps a declared language tag to the sandbox language id. The set
// is fixed: harness synthesis understands these and nothing else.
type Language struct {
	ID        string
	Name      string
	SandboxID int
}

var languages = map[string]Language{
	"python3": {ID: "python3", Name: "Python 3.8.1", SandboxID: 71},
	"python":  {ID: "python", Name: "Python 3.8.1", SandboxID: 71},
}

// LookupLanguage resolves a declared language tag, failing fast for
// anything the strategy layer does not recognize.
func LookupLanguage(langID string) (Language, error) {
	lang, ok := languages[langID]
	if !ok {
		return Language{}, fmt.Errorf("unsupported language: %q", langID)
	}
	return lang, nil
}
