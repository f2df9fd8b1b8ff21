package csvimport

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReader(t *testing.T) {
	t.Run("normalizes headers", func(t *testing.T) {
		r, err := NewReader(strings.NewReader("  Name , SKU ,price\nMug,MUG-1,9.50"))
		require.NoError(t, err)
		assert.Equal(t, []string{"name", "sku", "price"}, r.Headers())
	})

	t.Run("strips BOM", func(t *testing.T) {
		r, err := NewReader(strings.NewReader("\xEF\xBB\xBFname,sku\nMug,MUG-1"))
		require.NoError(t, err)
		assert.Equal(t, "name", r.Headers()[0])
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := NewReader(strings.NewReader(""))
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("invalid encoding", func(t *testing.T) {
		_, err := NewReader(strings.NewReader("name\n\xff\xfe\xfd"))
		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})

	t.Run("blank header", func(t *testing.T) {
		_, err := NewReader(strings.NewReader(" , \nMug,1"))
		assert.ErrorIs(t, err, ErrMissingHeader)
	})

	t.Run("custom delimiter", func(t *testing.T) {
		r, err := NewReader(strings.NewReader("name;sku\nMug;MUG-1"), WithDelimiter(';'))
		require.NoError(t, err)
		row, err := r.Next()
		require.NoError(t, err)
		assert.Equal(t, "MUG-1", row.Get("sku"))
	})
}

func TestReader_Next(t *testing.T) {
	input := "name,sku,price\n" +
		"Mug, MUG-1 ,9.50\n" +
		",,\n" +
		"Cup,CUP-1\n"
	r, err := NewReader(strings.NewReader(input))
	require.NoError(t, err)

	first, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, "MUG-1", first.Get("sku"))

	// the blank line is skipped but still counted
	second, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, 4, second.Line)
	assert.Equal(t, "", second.Get("price"))
	assert.Equal(t, "", second.Get("unknown"))

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestReader_Missing(t *testing.T) {
	r, err := NewReader(strings.NewReader("name,price\nMug,1"))
	require.NoError(t, err)

	assert.Equal(t, []string{"sku"}, r.Missing("name", "sku", "price"))
	assert.Empty(t, r.Missing("name"))
}

func TestReader_MaxRows(t *testing.T) {
	r, err := NewReader(strings.NewReader("name\na\nb\nc\n"), WithMaxRows(2))
	require.NoError(t, err)

	rows, err := r.ReadAll()
	assert.ErrorIs(t, err, ErrTooManyRows)
	assert.Len(t, rows, 2)
}

func TestErrors(t *testing.T) {
	errs := NewErrors(2)
	assert.True(t, errs.Empty())

	errs.Addf(2, "sku", CodeRequired, "%s is required", "sku")
	errs.Addf(2, "price", CodeInvalidType, "expected decimal")
	errs.Addf(5, "", CodeRejected, "rejected")

	assert.Equal(t, 3, errs.Total())
	assert.Len(t, errs.Items(), 2)
	assert.True(t, errs.Truncated())
	assert.Equal(t, 2, errs.Rows())
	assert.True(t, errs.HasRow(5))
	assert.False(t, errs.HasRow(3))
	assert.Equal(t, `row 2, column "sku": sku is required`, errs.Items()[0].Error())
}
