package utils_test

import (
	"testing"

	"github.com/jrsteele09/go-cms-client/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestPointerHelpers(t *testing.T) {
	require.Equal(t, "", utils.Value[string](nil))
	require.Equal(t, 7, utils.Value(utils.Ptr(7)))
	require.Equal(t, "fallback", utils.ValueOr(nil, "fallback"))
	require.Equal(t, "set", utils.ValueOr(utils.Ptr("set"), "fallback"))
}
