package credentials_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minihttp/minihttp"
	"github.com/minihttp/minihttp/credentials"
)

func TestResolve_InlineOnly(t *testing.T) {
	t.Parallel()

	creds, err := credentials.Resolve(credentials.Source{
		Inline:   credentials.Pair{Username: "admin", Password: "pw"},
		Timeout:  30 * time.Minute,
		Lifetime: 2 * time.Hour,
	})
	require.NoError(t, err)

	assert.Equal(t, minihttp.Credentials{
		Username: "admin",
		Password: "pw",
		Timeout:  30 * time.Minute,
		Lifetime: 2 * time.Hour,
	}, creds)
}

func TestResolve_FileTakesPrecedence(t *testing.T) {
	t.Parallel()

	path := writeTestFile(t, `{"username": "fileuser", "password": "filepw"}`)

	creds, err := credentials.Resolve(credentials.Source{
		Inline: credentials.Pair{Username: "inline", Password: "inlinepw"},
		File:   path,
	})
	require.NoError(t, err)

	assert.Equal(t, "fileuser", creds.Username)
	assert.Equal(t, "filepw", creds.Password)
}

func TestResolve_FileFillsOnlySetFields(t *testing.T) {
	t.Parallel()

	path := writeTestFile(t, `{"password": "filepw"}`)

	creds, err := credentials.Resolve(credentials.Source{
		Inline: credentials.Pair{Username: "inline", Password: "inlinepw"},
		File:   path,
	})
	require.NoError(t, err)

	assert.Equal(t, "inline", creds.Username)
	assert.Equal(t, "filepw", creds.Password)
}

func TestResolve_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing username", func(t *testing.T) {
		t.Parallel()

		_, err := credentials.Resolve(credentials.Source{Inline: credentials.Pair{Password: "pw"}})
		assert.ErrorIs(t, err, minihttp.ErrInvalidConfig)
	})

	t.Run("unreadable file", func(t *testing.T) {
		t.Parallel()

		_, err := credentials.Resolve(credentials.Source{
			Inline: credentials.Pair{Username: "admin"},
			File:   "/nonexistent/credentials.json",
		})
		assert.ErrorContains(t, err, "read credentials file")
	})
}
