package handler

import (
	"math/rand"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizePhoneNumber(t *testing.T) {
	cases := map[string]string{
		"+1 (415) 555-0100": "+14155550100@c.us",
		"+919158185659":     "+919158185659@c.us",
		"0812-3456-789":     "08123456789@c.us",
		"call me maybe":     "@c.us",
		"":                  "@c.us",
		"１２３":               "@c.us",
	}

	for input, want := range cases {
		t.Run("should normalize "+input, func(t *testing.T) {
			require.Equal(t, want, NormalizePhoneNumber(input))
		})
	}

	t.Run("should be idempotent on the part before the suffix", func(t *testing.T) {
		req := require.New(t)
		for input := range cases {
			once := strings.TrimSuffix(NormalizePhoneNumber(input), ChatSuffix)
			twice := strings.TrimSuffix(NormalizePhoneNumber(once), ChatSuffix)
			req.Equal(once, twice)
		}
	})

	t.Run("should keep only digits when the input has letters, spaces and digits", func(t *testing.T) {
		req := require.New(t)
		alphabet := []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ 0123456789")
		onlyDigits := regexp.MustCompile(`^\d*@c\.us$`)
		rng := rand.New(rand.NewSource(42))

		for i := 0; i < 500; i++ {
			runes := make([]rune, rng.Intn(30))
			for j := range runes {
				runes[j] = alphabet[rng.Intn(len(alphabet))]
			}

			got := NormalizePhoneNumber(string(runes))

			req.Regexp(onlyDigits, got, "input %q", string(runes))
		}
	})

	t.Run("should keep a leading plus when present", func(t *testing.T) {
		got := NormalizePhoneNumber("+62 812 abc 3456")
		require.Regexp(t, `^\+\d+@c\.us$`, got)
	})
}
