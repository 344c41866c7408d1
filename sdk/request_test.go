package sdk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParams_AddAndOptional(t *testing.T) {
	params := Params{}.
		Add("name", "T").
		Add("state", "CA").
		Optional("address", "").
		Optional("city", "Malibu").
		Optional("zip", "")

	assert.Equal(t, []string{"name", "state", "city"}, params.Names())
	assert.True(t, params.Has("city"))
	assert.False(t, params.Has("zip"))

	v, ok := params.Get("state")
	assert.True(t, ok)
	assert.Equal(t, "CA", v)
}

func TestParams_RequiredEmptyIsKept(t *testing.T) {
	params := Params{}.Add("user_token", "")
	assert.True(t, params.Has("user_token"))
	assert.Equal(t, "user_token=", params.Encode())
}

func TestParams_Encode(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		want   string
	}{
		{"empty", nil, ""},
		{"insertion order", Params{}.Add("z", "1").Add("a", "2"), "z=1&a=2"},
		{"escaping", Params{}.Add("name", "Acme & Sons").Add("q", "a=b"), "name=Acme+%26+Sons&q=a%3Db"},
		{"repeated name", Params{}.Add("k", "1").Add("k", "2"), "k=1&k=2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.params.Encode())
		})
	}
}

func TestParams_Without(t *testing.T) {
	params := Params{}.Add("user_token", "ut").Add("client_id", "c")
	out := params.Without("user_token")

	assert.Equal(t, []string{"client_id"}, out.Names())
	assert.Equal(t, []string{"user_token", "client_id"}, params.Names(), "original is unchanged")
}

func TestParams_Values(t *testing.T) {
	v := Params{}.Add("a", "1").Add("a", "2").Add("b", "3").Values()
	assert.Equal(t, []string{"1", "2"}, v["a"])
	assert.Equal(t, "3", v.Get("b"))
}

func TestParams_MarshalJSON(t *testing.T) {
	data, err := Params{}.Add("code", "abc").Add("state", "xyz").MarshalJSON()
	assert.NoError(t, err)
	assert.JSONEq(t, `{"code":"abc","state":"xyz"}`, string(data))

	data, err = Params(nil).MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}
