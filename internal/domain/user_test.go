package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_Name(t *testing.T) {
	tests := []struct {
		name     string
		user     User
		expected string
	}{
		{"display name when set", User{Email: "ada@example.com", DisplayName: "Ada"}, "Ada"},
		{"email when display name empty", User{Email: "ada@example.com"}, "ada@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.user.Name())
		})
	}
}

func TestSyncable_Timestamps(t *testing.T) {
	var s Syncable
	s.InitTimestamps()
	assert.False(t, s.CreatedAt.IsZero())
	assert.Equal(t, s.CreatedAt, s.UpdatedAt)

	created := s.CreatedAt
	s.Touch()
	assert.Equal(t, created, s.CreatedAt)
	assert.False(t, s.UpdatedAt.Before(created))
}
