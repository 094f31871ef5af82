package ports_test

import (
	"testing"

	"github.com/stagepass/portal/internal/mocks"
	authmocks "github.com/stagepass/portal/internal/mocks/auth"
	"github.com/stagepass/portal/internal/ports"
)

// This test only verifies that our mocks conform to the ports at compile time.
func TestMocksImplementPorts(t *testing.T) {
	t.Helper()

	var _ ports.BackendAuth = (*authmocks.MockBackendAuth)(nil)
	var _ ports.SessionStore = (*authmocks.MemorySessionStore)(nil)
	var _ ports.RoleMapper = (*authmocks.StaticRoleMapper)(nil)
	var _ ports.BillingGateway = (*mocks.MockBillingGateway)(nil)
	var _ ports.ResourceClient = (*mocks.MockResourceClient)(nil)
	var _ ports.ContactSender = (*mocks.MockContactSender)(nil)
}
