package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSetPasswordCost(t *testing.T) {
	cases := []struct {
		name     string
		cost     int
		expected int
	}{
		{name: "zero falls back to default", cost: 0, expected: bcrypt.DefaultCost},
		{name: "out of range falls back to default", cost: 99, expected: bcrypt.DefaultCost},
		{name: "configured cost is honored", cost: bcrypt.MinCost, expected: bcrypt.MinCost},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			user := &User{}
			require.NoError(t, user.SetPassword("Sup3r$ecret", tc.cost))

			cost, err := bcrypt.Cost([]byte(user.PasswordHash))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, cost)
			assert.True(t, user.CheckPassword("Sup3r$ecret"))
			assert.False(t, user.CheckPassword("wrong"))
		})
	}
}
