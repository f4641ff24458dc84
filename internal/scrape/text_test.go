package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageText(t *testing.T) {
	html := `<html><head><title> Casa Luz | Eco Retreat </title><style>body{color:red}</style></head>
<body>
<nav><a href="/">Home</a><a href="/about">About</a></nav>
<h1>Welcome</h1><p>We host <b>visiting</b> teachers.</p><div>Twelve cabanas</div>
<script>var tracking = true;</script>
<footer>Copyright 2025</footer>
</body></html>`

	doc, err := Document([]byte(html))
	require.NoError(t, err)

	title, text := PageText(doc)
	assert.Equal(t, "Casa Luz | Eco Retreat", title)
	assert.Equal(t, "Welcome We host visiting teachers. Twelve cabanas", text)

	// The source document is left intact.
	assert.Equal(t, 1, doc.Find("footer").Length())
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b c", CleanText("  a\n\tb   c "))
	assert.Empty(t, CleanText(" \n "))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "héll", Truncate("héllo", 4))
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "abc", Truncate("abc", 0))
}
