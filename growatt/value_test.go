package growatt

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue(t *testing.T) {
	v, err := ParseValue([]byte(`{"ppv":"2140","soc":82,"on":true,"none":null,"list":[1,"two"],"obj":{"k":"v"}}`))
	require.NoError(t, err)

	assert.Equal(t, KindObject, v.Kind())
	assert.Equal(t, KindString, v.Get("ppv").Kind())
	assert.Equal(t, KindNumber, v.Get("soc").Kind())
	assert.Equal(t, KindBool, v.Get("on").Kind())
	assert.Equal(t, KindNull, v.Get("none").Kind())
	assert.Equal(t, KindArray, v.Get("list").Kind())
	assert.Equal(t, KindObject, v.Get("obj").Kind())

	assert.True(t, v.Has("none"))
	assert.False(t, v.Has("missing"))
	assert.True(t, v.Get("missing").IsNull())
	assert.Equal(t, []string{"list", "none", "obj", "on", "ppv", "soc"}, v.Keys())
	assert.Equal(t, "v", v.Path("obj", "k").Str())
	assert.Equal(t, "two", v.Get("list").Index(1).Str())
	assert.True(t, v.Get("list").Index(5).IsNull())
	assert.Equal(t, 2, v.Get("list").Len())
	assert.Len(t, v.Get("list").Items(), 2)
}

func TestParseValueRejectsInvalid(t *testing.T) {
	for _, body := range []string{"", "<html>", `{"a":`, `{} {}`, `{"a":1}]`, `{"a":1}}`, `[1] ]`, `"x" x`} {
		_, err := ParseValue([]byte(body))
		assert.Error(t, err, body)
	}
}

func TestParseValueAllowsTrailingWhitespace(t *testing.T) {
	v, err := ParseValue([]byte("{\"a\":1}\n\t "))
	require.NoError(t, err)
	assert.Equal(t, "1", v.Get("a").Str())
}

func TestValueConversions(t *testing.T) {
	v, err := ParseValue([]byte(`{"s":"2140.5","n":82,"blank":"","text":"n/a","b":"true","arr":[]}`))
	require.NoError(t, err)

	f, ok := v.Get("s").Float()
	assert.True(t, ok)
	assert.Equal(t, 2140.5, f)

	f, ok = v.Get("n").Float()
	assert.True(t, ok)
	assert.Equal(t, 82.0, f)

	_, ok = v.Get("blank").Float()
	assert.False(t, ok)
	_, ok = v.Get("text").Float()
	assert.False(t, ok)
	_, ok = v.Get("arr").Float()
	assert.False(t, ok)

	b, ok := v.Get("b").Bool()
	assert.True(t, ok)
	assert.True(t, b)

	assert.Equal(t, "82", v.Get("n").Str())
	assert.Equal(t, "", v.Get("arr").Str())
}

func TestValueJSONRoundTrip(t *testing.T) {
	const doc = `{"a":[1,2.50,{"b":null}],"big":98765432109876543210,"c":"d"}`

	var v Value
	require.NoError(t, json.Unmarshal([]byte(doc), &v))

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, doc, string(out))
	assert.Contains(t, string(out), "98765432109876543210")
	assert.Contains(t, string(out), "2.50")
}
