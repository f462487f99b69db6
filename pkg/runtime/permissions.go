package runtime

import "fmt"

// Capability names a class of host access a builtin may request.
type Capability string

const (
	CapabilityRead    Capability = "read"
	CapabilityWrite   Capability = "write"
	CapabilityNetwork Capability = "net"
	CapabilityExec    Capability = "exec"
)

// PermissionContext is an explicit capability table consulted by stdlib
// builtins before they touch the host. The core evaluator never reads it.
type PermissionContext struct {
	granted  map[Capability]bool
	allowAll bool
}

// NewPermissionContext starts with nothing granted.
func NewPermissionContext() *PermissionContext {
	return &PermissionContext{granted: make(map[Capability]bool)}
}

// AllowAll grants every capability; used by the CLI's --allow-all flag.
func (p *PermissionContext) AllowAll() {
	p.allowAll = true
}

// Grant enables one capability.
func (p *PermissionContext) Grant(c Capability) {
	p.granted[c] = true
}

// Allowed reports whether a capability has been granted.
func (p *PermissionContext) Allowed(c Capability) bool {
	return p.allowAll || p.granted[c]
}

// Require returns a diagnostic when the capability is missing.
func (p *PermissionContext) Require(c Capability, what string) error {
	if p.Allowed(c) {
		return nil
	}
	return NewError(fmt.Sprintf("Permission denied: %s requires the '%s' capability", what, c))
}
