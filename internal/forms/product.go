// Package forms parses and validates the admin product form.
package forms

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// maxFormMemory bounds the in-memory portion of a multipart parse; larger
// payloads spill to temp files.
const maxFormMemory = 32 << 20

// Upload is a binary payload submitted with the form, together with the
// client-supplied filename.
type Upload struct {
	Filename string
	Data     []byte
}

// ProductForm is the typed, validated shape of a product submission.
// File and Image are nil when the client did not submit the part.
type ProductForm struct {
	Name         string `validate:"required"`
	Description  string `validate:"required"`
	PriceInCents int64  `validate:"min=1"`
	File         *Upload
	Image        *Upload
}

// FieldErrors maps a field name to the list of messages it failed with.
type FieldErrors map[string][]string

func (e FieldErrors) add(field, message string) {
	e[field] = append(e[field], message)
}

// ParseProduct decodes a multipart form submission into a ProductForm.
// Coercion failures (a non-numeric price) are reported as field errors, not
// as a decode error, so they surface alongside validation failures.
func ParseProduct(r *http.Request) (ProductForm, FieldErrors, error) {
	fieldErrors := make(FieldErrors)

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		return ProductForm{}, nil, fmt.Errorf("failed to parse multipart form: %w", err)
	}

	form := ProductForm{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
	}

	if raw := r.FormValue("priceInCents"); raw != "" {
		price, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			fieldErrors.add("priceInCents", "Expected an integer")
		} else {
			form.PriceInCents = price
		}
	}

	for _, part := range []struct {
		field  string
		target **Upload
	}{
		{"file", &form.File},
		{"image", &form.Image},
	} {
		upload, err := readUpload(r, part.field)
		if err != nil {
			return ProductForm{}, nil, err
		}
		*part.target = upload
	}

	return form, fieldErrors, nil
}

// Validate checks the form against the schema. requireAssets selects the
// creation rules (file and image mandatory); the update path accepts absent
// payloads. Every failing field is reported, not just the first.
func (f *ProductForm) Validate(v *validator.Validate, requireAssets bool) FieldErrors {
	fieldErrors := make(FieldErrors)

	if err := v.Struct(f); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			for _, fieldErr := range validationErrors {
				fieldErrors.add(formFieldName(fieldErr.Field()), messageFor(fieldErr))
			}
		} else {
			fieldErrors.add("form", "Invalid submission")
		}
	}

	checkUpload(fieldErrors, "file", f.File, requireAssets)
	checkUpload(fieldErrors, "image", f.Image, requireAssets)

	return fieldErrors
}

// checkUpload enforces the payload rule: required non-empty on create,
// absent-or-non-empty on update.
func checkUpload(fieldErrors FieldErrors, field string, upload *Upload, required bool) {
	switch {
	case upload == nil:
		if required {
			fieldErrors.add(field, "Required")
		}
	case len(upload.Data) == 0:
		fieldErrors.add(field, "Required")
	}
}

// readUpload pulls one file part out of the parsed form. A missing part is
// not an error; the caller decides whether it was required.
func readUpload(r *http.Request, field string) (*Upload, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s part: %w", field, err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s payload: %w", field, err)
	}
	return &Upload{Filename: headerFilename(header), Data: data}, nil
}

func headerFilename(header *multipart.FileHeader) string {
	if header == nil {
		return ""
	}
	return header.Filename
}

// formFieldName maps struct field names back to their form field names.
func formFieldName(structField string) string {
	switch structField {
	case "Name":
		return "name"
	case "Description":
		return "description"
	case "PriceInCents":
		return "priceInCents"
	default:
		return structField
	}
}

// messageFor renders a human-readable message for a failed rule.
func messageFor(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "Required"
	case "min":
		return fmt.Sprintf("Must be at least %s", fieldErr.Param())
	default:
		return "failed on rule: " + fieldErr.Tag()
	}
}
