package sift_test

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/fwojciec/sift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_Validate(t *testing.T) {
	t.Parallel()

	t.Run("accepts public https URL", func(t *testing.T) {
		t.Parallel()

		v := sift.NewValidator(nil)

		assert.NoError(t, v.Validate("https://example.com/docs"))
	})

	t.Run("accepts allowed ports", func(t *testing.T) {
		t.Parallel()

		v := sift.NewValidator(nil)

		for _, port := range []int{80, 443, 8080, 8443} {
			assert.NoError(t, v.Validate(fmt.Sprintf("https://example.com:%d/docs", port)))
		}
	})

	rejected := []struct {
		name   string
		url    string
		reason string
	}{
		{"loopback IP", "http://127.0.0.1/", "private or local"},
		{"localhost with odd port", "http://localhost:9999/", "not allowed"},
		{"ftp scheme", "ftp://example.com/", "invalid scheme"},
		{"too long", "https://example.com/" + strings.Repeat("a", 3000), "too long"},
		{"private IPv4", "http://10.0.0.5/admin", "private or local"},
		{"link-local IPv4", "http://169.254.169.254/latest/meta-data", "private or local"},
		{"IPv6 loopback", "http://[::1]/", "private or local"},
		{"unspecified", "http://0.0.0.0/", "private or local"},
		{"intranet alias", "http://intranet/", "localhost or internal"},
		{"disallowed port", "https://example.com:22/", "port 22"},
		{"missing host", "https:///docs", "hostname"},
		{"markup characters", "https://example.com/<script>", "suspicious character"},
		{"ampersand", "https://example.com/?a=1&b=2", "suspicious character"},
		{"newline", "https://example.com/\nHost: evil", "suspicious character"},
	}
	for _, tc := range rejected {
		t.Run("rejects "+tc.name, func(t *testing.T) {
			t.Parallel()

			v := sift.NewValidator(nil)
			err := v.Validate(tc.url)

			require.Error(t, err)
			assert.Equal(t, sift.EINVALID, sift.ErrorCode(err))
			assert.Contains(t, sift.ErrorMessage(err), tc.reason)
		})
	}

	t.Run("warns on private-looking hostnames without rejecting", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		v := sift.NewValidator(slog.New(slog.NewTextHandler(&buf, nil)))

		err := v.Validate("https://staging.example.com/docs")

		require.NoError(t, err)
		assert.Contains(t, buf.String(), "potentially private host")
		assert.Contains(t, buf.String(), "host=staging.example.com")
	})

	t.Run("caches results", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		v := sift.NewValidator(slog.New(slog.NewTextHandler(&buf, nil)))

		require.NoError(t, v.Validate("https://dev.example.com/"))
		require.NoError(t, v.Validate("https://dev.example.com/"))

		assert.Equal(t, 1, strings.Count(buf.String(), "potentially private host"))
		assert.Equal(t, 1, v.CacheLen())
	})

	t.Run("bounds the cache", func(t *testing.T) {
		t.Parallel()

		v := sift.NewValidator(nil)
		for i := range 1500 {
			_ = v.Validate(fmt.Sprintf("https://example.com/page/%d", i))
		}

		assert.LessOrEqual(t, v.CacheLen(), 1000)
		assert.Greater(t, v.CacheLen(), 800)
	})
}
