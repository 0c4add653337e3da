package forms

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseForm assembles a multipart request with the given fields and file
// parts and runs it through ParseProduct.
func parseForm(t *testing.T, fields map[string]string, files map[string][]byte) (ProductForm, FieldErrors) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for field, value := range fields {
		require.NoError(t, writer.WriteField(field, value))
	}
	for field, data := range files {
		part, err := writer.CreateFormFile(field, field+".bin")
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/v1/admin/products", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	form, parseErrors, err := ParseProduct(req)
	require.NoError(t, err)
	return form, parseErrors
}

func validFields() map[string]string {
	return map[string]string{
		"name":         "Widget",
		"description":  "A widget",
		"priceInCents": "500",
	}
}

func Test_ParseProduct(t *testing.T) {
	t.Run("decodes all fields and payloads", func(t *testing.T) {
		form, parseErrors := parseForm(t, validFields(), map[string][]byte{
			"file":  []byte("0123456789"),
			"image": []byte("01234567890123456789"),
		})

		assert.Empty(t, parseErrors)
		assert.Equal(t, "Widget", form.Name)
		assert.Equal(t, "A widget", form.Description)
		assert.Equal(t, int64(500), form.PriceInCents)
		require.NotNil(t, form.File)
		assert.Equal(t, "file.bin", form.File.Filename)
		assert.Equal(t, []byte("0123456789"), form.File.Data)
		require.NotNil(t, form.Image)
		assert.Equal(t, []byte("01234567890123456789"), form.Image.Data)
	})

	t.Run("missing file parts are nil, not an error", func(t *testing.T) {
		form, parseErrors := parseForm(t, validFields(), nil)

		assert.Empty(t, parseErrors)
		assert.Nil(t, form.File)
		assert.Nil(t, form.Image)
	})

	t.Run("non-numeric price is a field error", func(t *testing.T) {
		fields := validFields()
		fields["priceInCents"] = "cheap"
		_, parseErrors := parseForm(t, fields, nil)

		assert.Contains(t, parseErrors, "priceInCents")
	})
}

func Test_Validate_CreateRules(t *testing.T) {
	v := validator.New()

	t.Run("valid form has no errors", func(t *testing.T) {
		form, _ := parseForm(t, validFields(), map[string][]byte{
			"file":  []byte("0123456789"),
			"image": []byte("01234567890123456789"),
		})
		assert.Empty(t, form.Validate(v, true))
	})

	t.Run("every failing field is reported at once", func(t *testing.T) {
		form, _ := parseForm(t, map[string]string{}, nil)
		fieldErrors := form.Validate(v, true)

		assert.Contains(t, fieldErrors, "name")
		assert.Contains(t, fieldErrors, "description")
		assert.Contains(t, fieldErrors, "priceInCents")
		assert.Contains(t, fieldErrors, "file")
		assert.Contains(t, fieldErrors, "image")
		assert.Equal(t, []string{"Required"}, fieldErrors["name"])
		assert.Equal(t, []string{"Required"}, fieldErrors["file"])
	})

	t.Run("zero price fails the minimum rule", func(t *testing.T) {
		fields := validFields()
		fields["priceInCents"] = "0"
		form, _ := parseForm(t, fields, map[string][]byte{
			"file":  []byte("x"),
			"image": []byte("x"),
		})
		fieldErrors := form.Validate(v, true)

		assert.Equal(t, []string{"Must be at least 1"}, fieldErrors["priceInCents"])
	})

	t.Run("empty payload fails even when present", func(t *testing.T) {
		form, _ := parseForm(t, validFields(), map[string][]byte{
			"file":  {},
			"image": []byte("x"),
		})
		fieldErrors := form.Validate(v, true)

		assert.Equal(t, []string{"Required"}, fieldErrors["file"])
		assert.NotContains(t, fieldErrors, "image")
	})
}

func Test_Validate_UpdateRules(t *testing.T) {
	v := validator.New()

	t.Run("absent payloads are allowed", func(t *testing.T) {
		form, _ := parseForm(t, validFields(), nil)
		assert.Empty(t, form.Validate(v, false))
	})

	t.Run("supplied empty payload is still rejected", func(t *testing.T) {
		form, _ := parseForm(t, validFields(), map[string][]byte{"image": {}})
		fieldErrors := form.Validate(v, false)

		assert.Equal(t, []string{"Required"}, fieldErrors["image"])
		assert.NotContains(t, fieldErrors, "file")
	})
}
