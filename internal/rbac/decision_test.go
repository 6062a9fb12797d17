package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasRole(t *testing.T) {
	tests := []struct {
		name     string
		roles    []string
		required []string
		want     bool
	}{
		{
			name:     "single match",
			roles:    []string{"admin"},
			required: []string{"admin"},
			want:     true,
		},
		{
			name:     "any of required suffices",
			roles:    []string{"editor"},
			required: []string{"admin", "editor"},
			want:     true,
		},
		{
			name:     "no overlap",
			roles:    []string{"user"},
			required: []string{"admin", "superadmin"},
			want:     false,
		},
		{
			name:     "no roles held",
			roles:    nil,
			required: []string{"user"},
			want:     false,
		},
		{
			name:     "nothing required",
			roles:    []string{"admin"},
			required: nil,
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasRole(tt.roles, tt.required...))
		})
	}
}

func TestCanExecuteAction(t *testing.T) {
	caps := CapabilityMap{
		"content": {"read", "update"},
		"audit":   {"view"},
	}

	tests := []struct {
		name     string
		caps     CapabilityMap
		required Statement
		want     bool
	}{
		{
			name:     "single action permitted",
			caps:     caps,
			required: Statement{"content": {"read"}},
			want:     true,
		},
		{
			name:     "all actions within category required",
			caps:     caps,
			required: Statement{"content": {"read", "update"}},
			want:     true,
		},
		{
			name:     "one missing action fails the category",
			caps:     caps,
			required: Statement{"content": {"read", "delete"}},
			want:     false,
		},
		{
			name:     "categories are ANDed",
			caps:     caps,
			required: Statement{"content": {"read"}, "audit": {"view"}},
			want:     true,
		},
		{
			name:     "one missing category fails the statement",
			caps:     caps,
			required: Statement{"content": {"read"}, "analytics": {"view"}},
			want:     false,
		},
		{
			name:     "unknown category",
			caps:     caps,
			required: Statement{"user": {"read"}},
			want:     false,
		},
		{
			name:     "empty capability map denies everything",
			caps:     CapabilityMap{},
			required: Statement{"content": {"read"}},
			want:     false,
		},
		{
			name:     "empty statement always allows",
			caps:     CapabilityMap{},
			required: Statement{},
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanExecuteAction(tt.caps, tt.required))
		})
	}
}

func TestValidAction(t *testing.T) {
	assert.True(t, ValidAction(CategoryContent, ActionPublish))
	assert.True(t, ValidAction(CategoryAudit, ActionView))
	assert.False(t, ValidAction(CategoryAudit, ActionDelete))
	assert.False(t, ValidAction("zone", ActionRead))
	assert.False(t, ValidAction("", ""))
}
