package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitList(t *testing.T) {
	assert.Nil(t, SplitList(""))
	assert.Equal(t, []string{"a", "b"}, SplitList("a,,b,"))
	assert.Equal(t, []string{"env%3Dprod"}, SplitList("env%3Dprod"))
}

func TestRule_Enabled(t *testing.T) {
	assert.True(t, Rule{RuleStatus: RuleStatusEnabled}.Enabled())
	assert.False(t, Rule{RuleStatus: RuleStatusDisabled}.Enabled())
	assert.False(t, Rule{}.Enabled())
}

func TestBulkAckRequest_EmptySystemsEncodeAsArray(t *testing.T) {
	data, err := json.Marshal(BulkAckRequest{Systems: []string{}, Justification: "x"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"systems":[],"justification":"x"}`, string(data))
}
