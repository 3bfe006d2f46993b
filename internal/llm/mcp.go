package llm

import (
	"net/url"
	"strings"
	"unicode"
)

const defaultMCPLabel = "mcp-server"

// MCPLabel derives a server label from an MCP URL. Labels may only hold
// letters, digits, dashes and underscores, and must start with a letter.
func MCPLabel(serverURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(serverURL))
	if err != nil {
		return defaultMCPLabel
	}
	host := strings.TrimSpace(parsed.Host)
	if host == "" {
		return defaultMCPLabel
	}

	label := strings.ReplaceAll(host, ".", "-")
	label = strings.ReplaceAll(label, ":", "_")
	if !unicode.IsLetter(rune(label[0])) {
		label = "mcp-" + label
	}
	return label
}
