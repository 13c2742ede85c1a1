// AngelaMos | 2026
// config_test.go

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAdminEmail(t *testing.T) {
	cfg := &Config{
		Admin: AdminConfig{
			Emails: []string{"Admin@cyberlearn.io", " ops@cyberlearn.io "},
		},
	}

	assert.True(t, cfg.IsAdminEmail("admin@cyberlearn.io"))
	assert.True(t, cfg.IsAdminEmail("ADMIN@CYBERLEARN.IO"))
	assert.True(t, cfg.IsAdminEmail("  ops@cyberlearn.io"))
	assert.False(t, cfg.IsAdminEmail("user@cyberlearn.io"))
	assert.False(t, cfg.IsAdminEmail(""))
}

func TestIsAdminEmailEmptyList(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.IsAdminEmail("admin@cyberlearn.io"))
}

func TestServerAddress(t *testing.T) {
	s := &ServerConfig{Host: "0.0.0.0", Port: 8080}
	assert.Equal(t, "0.0.0.0:8080", s.Address())
}
