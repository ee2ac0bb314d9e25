package actions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstitute(t *testing.T) {
	fc := newFakeClient()
	ctx := newTestContext(fc)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"user mention", "hello {user}", "hello <@actor>"},
		{"username", "{username} pressed", "presser pressed"},
		{"channel", "look in {channel}", "look in <#chan-1>"},
		{"guild name", "welcome to {guild}", "welcome to Test Guild"},
		{"unknown placeholder kept", "{wat} happened", "{wat} happened"},
		{"no placeholders", "plain text", "plain text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Substitute(tt.in, ctx))
		})
	}
}

func TestSubstituteDisplayNamePrecedence(t *testing.T) {
	fc := newFakeClient()
	ctx := newTestContext(fc)

	ctx.Actor.User.GlobalName = "Presser Global"
	assert.Equal(t, "Presser Global", Substitute("{username}", ctx))

	ctx.Actor.Nick = "Nicky"
	assert.Equal(t, "Nicky", Substitute("{username}", ctx))
}

func TestSubstituteNilContext(t *testing.T) {
	assert.Equal(t, "{user}", Substitute("{user}", nil))
}
