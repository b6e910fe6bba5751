package schema_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/styleforge/schema"
)

const personSchema = `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="person">
    <xs:complexType>
      <xs:sequence>
        <xs:element name="name" type="xs:string"/>
        <xs:element name="age" type="xs:integer"/>
      </xs:sequence>
    </xs:complexType>
  </xs:element>
</xs:schema>`

func TestXSDValidator_ValidDocument(t *testing.T) {
	v := schema.NewXSDValidator()

	doc := `<?xml version="1.0"?>
<person>
  <name>Ada Lovelace</name>
  <age>36</age>
</person>`

	result, err := v.Check(context.Background(), []byte(doc), []byte(personSchema))
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestXSDValidator_InvalidDocument(t *testing.T) {
	v := schema.NewXSDValidator()

	doc := `<?xml version="1.0"?>
<person>
  <name>Ada Lovelace</name>
  <age>not a number</age>
</person>`

	result, err := v.Check(context.Background(), []byte(doc), []byte(personSchema))
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Errors)
}

func TestXSDValidator_UndeclaredElement(t *testing.T) {
	v := schema.NewXSDValidator()

	result, err := v.Check(context.Background(), []byte(`<report/>`), []byte(personSchema))
	require.NoError(t, err)
	assert.False(t, result.Valid)
}

func TestXSDValidator_BrokenSchema(t *testing.T) {
	v := schema.NewXSDValidator()

	_, err := v.Check(context.Background(), []byte(`<person/>`), []byte(`<not-a-schema/>`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile schema")
}

func TestXSDValidator_CancelledContext(t *testing.T) {
	v := schema.NewXSDValidator()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := v.Check(ctx, []byte(`<person/>`), []byte(personSchema))
	assert.ErrorIs(t, err, context.Canceled)
}
