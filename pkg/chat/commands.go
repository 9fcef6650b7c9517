package chat

import (
	"fmt"
	"regexp"
	"strings"
)

// Slash commands: el mensaje que empieza con /comando se reescribe como una
// instrucción explícita antes de ir al modelo. El texto guardado en el
// historial es el original del usuario, no la reescritura.

var commandPattern = regexp.MustCompile(`^/(\w+)\s*(.*)`)

// Command es un slash command parseado del contenido de un mensaje
type Command struct {
	Name string
	Args string
}

// ParseCommand detecta un slash command al inicio del contenido
func ParseCommand(content string) (*Command, bool) {
	match := commandPattern.FindStringSubmatch(content)
	if match == nil {
		return nil, false
	}
	return &Command{
		Name: match[1],
		Args: strings.TrimSpace(match[2]),
	}, true
}

// Rewrite convierte el comando en la instrucción que ve el modelo.
// Comandos desconocidos se reducen a sus argumentos.
func (c *Command) Rewrite() string {
	switch c.Name {
	case "summarize":
		return fmt.Sprintf("Please provide a concise summary of: %s", c.Args)
	case "translate":
		return fmt.Sprintf("Please translate the following to the target language: %s", c.Args)
	case "plan":
		return fmt.Sprintf("Please create a detailed plan or outline for: %s", c.Args)
	case "mood":
		return fmt.Sprintf("I'd like to log my mood. %s", c.Args)
	case "remind":
		return fmt.Sprintf("Please help me set a reminder: %s", c.Args)
	default:
		return c.Args
	}
}
