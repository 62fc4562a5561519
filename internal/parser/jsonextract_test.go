package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObjectFromProse(t *testing.T) {
	text := `Sure! Here is the evaluation you asked for:
{"name": "Alice", "score": 85}
Let me know if you need anything else.`

	obj := ExtractJSONObject(text)
	require.NotNil(t, obj)
	assert.Equal(t, "Alice", obj["name"])
	assert.Equal(t, float64(85), obj["score"])
}

func TestExtractJSONObjectFromCodeFence(t *testing.T) {
	text := "```json\n{\"job_title\": \"Backend Engineer\"}\n```"

	obj := ExtractJSONObject(text)
	require.NotNil(t, obj)
	assert.Equal(t, "Backend Engineer", obj["job_title"])
}

func TestExtractJSONObjectRepairsBareQuotes(t *testing.T) {
	// 字符串内部的裸引号是模型最常见的输出毛病
	text := `{"education": "B.Tech from "IIT" Delhi", "score": 70}`

	obj := ExtractJSONObject(text)
	require.NotNil(t, obj)
	assert.Equal(t, `B.Tech from "IIT" Delhi`, obj["education"])
	assert.Equal(t, float64(70), obj["score"])
}

func TestExtractJSONObjectStripsBOM(t *testing.T) {
	obj := ExtractJSONObject("\uFEFF{\"name\": \"Bob\"}")
	require.NotNil(t, obj)
	assert.Equal(t, "Bob", obj["name"])
}

func TestExtractJSONObjectNeverPanics(t *testing.T) {
	for _, text := range []string{
		"",
		"no json here at all",
		"{broken",
		"}{",
		"{\"unclosed\": ",
	} {
		assert.Nil(t, ExtractJSONObject(text), "输入 %q 应返回nil", text)
	}
}

func TestExtractJSONArrayGreedy(t *testing.T) {
	text := `["Go", "MySQL", ["nested"], "Redis"]`

	arr := ExtractJSONArray(text)
	require.Len(t, arr, 4)
	assert.Equal(t, "Go", arr[0])
}

func TestExtractJSONArrayLazyStopsAtFirstArray(t *testing.T) {
	// 模型在数组后面追加了说明文字，非贪婪匹配应取到第一个完整数组
	text := `["Python", "Django", "REST"] — these are common [industry] choices.`

	arr := ExtractJSONArrayLazy(text)
	require.Len(t, arr, 3)
	assert.Equal(t, "Django", arr[1])
}

func TestExtractJSONArrayFailureYieldsEmpty(t *testing.T) {
	assert.Empty(t, ExtractJSONArray("not an array"))
	assert.Empty(t, ExtractJSONArrayLazy(""))
	assert.NotNil(t, ExtractJSONArray("garbage"))
}
