package addr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_RelativeAndAbsolute(t *testing.T) {
	a, err := Parse("svc/api", ":artifact")
	require.NoError(t, err)
	assert.Equal(t, Address{Base: "svc/api", Name: "artifact"}, a)

	b, err := Parse("ignored", "//svc/api:artifact")
	require.NoError(t, err)
	assert.Equal(t, Address{Base: "svc/api", Name: "artifact"}, b)

	assert.True(t, a.Equal(b))
}

func TestParse_RootBase(t *testing.T) {
	a, err := Parse("ignored", "//:artifact")
	require.NoError(t, err)
	assert.Equal(t, "", a.Base)
	assert.Equal(t, "artifact", a.Name)
}

func TestParse_AttrProjection(t *testing.T) {
	a, err := Parse("root", "//root:step#output.url")
	require.NoError(t, err)
	assert.Equal(t, "output.url", a.Attr)
	assert.Equal(t, []string{"output", "url"}, a.AttrPath())

	b, err := Parse("root", ":step")
	require.NoError(t, err)
	assert.Equal(t, "", b.Attr)
	assert.Nil(t, b.AttrPath())
}

func TestParse_EmptyAttrMeansNoProjection(t *testing.T) {
	a, err := Parse("root", "//root:step#")
	require.NoError(t, err)
	assert.Equal(t, "", a.Attr)
}

func TestParse_Invalid(t *testing.T) {
	cases := []string{
		"name-without-delimiter",
		"//root:",
		":",
		"//root:-bad",
		"//root:bad-",
		"//root:1bad",
	}
	for _, c := range cases {
		_, err := Parse("root", c)
		assert.Error(t, err, c)
		var target *InvalidAddressError
		assert.ErrorAs(t, err, &target, c)
	}
}

func TestIdentity_IgnoresAttr(t *testing.T) {
	a := Address{Base: "r", Name: "n", Attr: "x"}
	b := Address{Base: "r", Name: "n", Attr: "y"}
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Identity(), b.Identity())
}

func TestString_RoundTrips(t *testing.T) {
	a := Address{Base: "svc/api", Name: "artifact"}
	s := a.String()
	parsed, err := Parse("whatever", s)
	require.NoError(t, err)
	assert.True(t, a.Equal(parsed))

	withAttr := a.WithAttr("foo.bar")
	s2 := withAttr.String()
	parsed2, err := Parse("whatever", s2)
	require.NoError(t, err)
	assert.Equal(t, withAttr, parsed2)
}
