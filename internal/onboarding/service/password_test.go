package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"onboard/internal/onboarding/service"
	dErrors "onboard/pkg/domain-errors"
)

func TestCheckPasswordStrength(t *testing.T) {
	valid := []string{
		"Str0ng!pass",
		"aB3$efgh",
		"Pa55word,with length",
	}
	for _, password := range valid {
		assert.NoError(t, service.CheckPasswordStrength(password), "password %q", password)
	}

	weak := map[string]string{
		"short":              "aB3$efg",
		"no lowercase":       "AB3$EFGH",
		"no uppercase":       "ab3$efgh",
		"no digit":           "abC$efgh",
		"no symbol":          "abC3efgh",
		"space is no symbol": "abC3efg h",
		"empty":              "",
	}
	for name, password := range weak {
		err := service.CheckPasswordStrength(password)
		assert.Error(t, err, "case %s", name)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeWeakPassword), "case %s", name)
	}
}
