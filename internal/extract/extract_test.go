package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTextPlainPassthrough(t *testing.T) {
	src := "IDENTIFICATION DIVISION.\nPROGRAM-ID. SETTLE.\n"
	got, err := Text("input/j1/settle.cbl", []byte(src))
	require.NoError(t, err)
	require.Equal(t, src, got)
}

func TestTextUnknownExtensionTreatedAsPlain(t *testing.T) {
	got, err := Text("input/j1/jobstream", []byte("//SETTLE JOB (ACCT)"))
	require.NoError(t, err)
	require.Equal(t, "//SETTLE JOB (ACCT)", got)
}

func TestTextLatin1Fallback(t *testing.T) {
	// 0xE9 is not valid UTF-8 on its own; Latin-1 reads it as é.
	got, err := Text("notes.txt", []byte{'r', 0xE9, 's', 'u', 'm', 0xE9})
	require.NoError(t, err)
	require.Equal(t, "résumé", got)
}

func TestTextCorruptPDFReturnsError(t *testing.T) {
	_, err := Text("upload.pdf", []byte("this is not a pdf at all"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "read pdf")
}

func TestTextCorruptDOCXReturnsError(t *testing.T) {
	_, err := Text("upload.docx", []byte("this is not a zip archive"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "read docx")
}

func TestDocxTextCollectsRunsAndParagraphs(t *testing.T) {
	markup := `<?xml version="1.0"?><w:document><w:body>` +
		`<w:p><w:r><w:t>The nightly batch</w:t></w:r><w:r><w:t xml:space="preserve"> settles accounts.</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Uses DB2 &amp; CICS.</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t/></w:r></w:p>` +
		`</w:body></w:document>`

	got := docxText(markup)
	require.Equal(t, "The nightly batch settles accounts.\nUses DB2 & CICS.\n\n", got)
}
