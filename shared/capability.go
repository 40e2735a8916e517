package shared

import "github.com/morim3/mcp-adobe-premiere/shared/mcp/schema"

type ICapability interface {
	GetHandlers() map[string]func(*Message) (interface{}, error)
}

type IServerCapability interface {
	ICapability
	SetCapabilities(s *schema.ServerCapabilities)
}
