package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock_JSONFence(t *testing.T) {
	in := "```json\n{\"a\": 1}\n```"
	assert.Equal(t, `{"a": 1}`, CleanJSONBlock(in))
}

func TestCleanJSONBlock_BareFence(t *testing.T) {
	in := "```\n{\"a\": 1}\n```"
	assert.Equal(t, `{"a": 1}`, CleanJSONBlock(in))
}

func TestCleanJSONBlock_FenceWithLanguageID(t *testing.T) {
	in := "```javascript\n{\"a\": 1}\n```"
	assert.Equal(t, `{"a": 1}`, CleanJSONBlock(in))
}

func TestCleanJSONBlock_PlainJSONUntouched(t *testing.T) {
	in := `{"a": 1}`
	assert.Equal(t, in, CleanJSONBlock(in))
}

func TestCleanJSONBlock_SurroundingWhitespace(t *testing.T) {
	in := "  \n```json\n{}\n```\n  "
	assert.Equal(t, "{}", CleanJSONBlock(in))
}
