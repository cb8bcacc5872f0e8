package input

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/sitesimilarity/internal/domain"
)

func TestDeriveURL(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		scheme domain.Scheme
		want   string
	}{
		{name: "bare ip over http", raw: "1.2.3.4", scheme: domain.SchemeHTTP, want: "http://1.2.3.4"},
		{name: "bare host over https", raw: "example.com", scheme: domain.SchemeHTTPS, want: "https://example.com"},
		{name: "host with path", raw: "example.com/login", scheme: domain.SchemeHTTP, want: "http://example.com/login"},
		{name: "surrounding whitespace", raw: "  10.0.0.1 ", scheme: domain.SchemeHTTP, want: "http://10.0.0.1"},
		{name: "full url keeps only the path", raw: "https://example.com/a", scheme: domain.SchemeHTTP, want: "http:///a"},
		{name: "escaped slash stays escaped", raw: "example.com/a%2Fb", scheme: domain.SchemeHTTP, want: "http://example.com/a%2Fb"},
		{name: "escaped question mark stays in the path", raw: "example.com/%3Fq", scheme: domain.SchemeHTTP, want: "http://example.com/%3Fq"},
		{name: "unparseable line used verbatim", raw: "1.2.3.4:8080", scheme: domain.SchemeHTTPS, want: "https://1.2.3.4:8080"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveURL(tc.raw, tc.scheme))
		})
	}
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, SplitLines(""))
	assert.Equal(t, []string{"a", "", "b"}, SplitLines("a\r\n\r\nb\n"))
	assert.Equal(t, []string{"a", "b"}, SplitLines("a\nb"))
	assert.Equal(t, []string{"a", "", "b"}, SplitLines("a\r\rb\r"))
	assert.Equal(t, []string{"a", "b", "c"}, SplitLines("a\rb\r\nc"))
}

func TestBuildPairsSkipsBlankLines(t *testing.T) {
	file1 := []string{"1.2.3.4", "", "5.6.7.8", "   "}
	file2 := []string{"example.com"}

	pairs := BuildPairs(file1, file2)

	require.Len(t, pairs, 4)
	assert.Equal(t, 4, CountPairs(file1, file2))
	for _, p := range pairs {
		assert.NotEqual(t, "http://", p.URLA)
		assert.NotEqual(t, "https://", p.URLA)
	}
}

func TestBuildPairsKeepsSchemesApart(t *testing.T) {
	pairs := BuildPairs([]string{"1.2.3.4"}, []string{"example.com", "example.org"})

	want := []domain.Pair{
		{URLA: "http://1.2.3.4", URLB: "http://example.com", Scheme: domain.SchemeHTTP},
		{URLA: "https://1.2.3.4", URLB: "https://example.com", Scheme: domain.SchemeHTTPS},
		{URLA: "http://1.2.3.4", URLB: "http://example.org", Scheme: domain.SchemeHTTP},
		{URLA: "https://1.2.3.4", URLB: "https://example.org", Scheme: domain.SchemeHTTPS},
	}
	assert.Equal(t, want, pairs)
}

func TestCountPairsEmpty(t *testing.T) {
	assert.Zero(t, CountPairs(nil, []string{"a"}))
	assert.Empty(t, BuildPairs([]string{"", ""}, []string{"a"}))
}

func TestReadLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ips.txt")
	require.NoError(t, os.WriteFile(path, []byte("1.2.3.4\n\n5.6.7.8\n"), 0o600))

	lines, err := ReadLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"1.2.3.4", "", "5.6.7.8"}, lines)

	_, err = ReadLines(filepath.Join(dir, "missing.txt"))
	require.ErrorIs(t, err, ErrReadFile)
}
