package render

import (
	"math/rand/v2"
	"time"
)

// Collaborators back the built-in extensions. Nil collaborators make the
// corresponding extension fail at evaluation time.
type Collaborators struct {
	Now            func() time.Time
	Rand           *rand.Rand
	Clipboard      ClipboardReader
	Chooser        Chooser
	Forms          FormRenderer
	CommandTimeout time.Duration
	ConfigDir      string
}

// Builtins returns every built-in extension.
func Builtins(c Collaborators) []Extension {
	return []Extension{
		Echo{},
		Date{Now: c.Now},
		Random{Rand: c.Rand},
		Clipboard{Reader: c.Clipboard},
		Shell{Timeout: c.CommandTimeout},
		Script{Timeout: c.CommandTimeout, ConfigDir: c.ConfigDir},
		Choice{Chooser: c.Chooser},
		Form{Renderer: c.Forms},
	}
}
