package student_test

import (
	"strings"
	"testing"

	"agency-service/internal/schema"
	"agency-service/internal/student"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	t.Run("HeaderAliasesAndBOM", func(t *testing.T) {
		input := "\ufeffFirst_Name, Last_Name ,EMAIL,Stage,High_Priority\n" +
			"Ada,Okafor,ADA@Example.com,Offer,y\n"

		rows, err := student.ParseCSV(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, rows, 1)

		row := rows[0]
		assert.Equal(t, 2, row.Line)
		assert.NoError(t, row.Err)
		assert.Equal(t, "Ada", row.Student.FirstName)
		assert.Equal(t, "Okafor", row.Student.LastName)
		assert.Equal(t, "ada@example.com", row.Student.Email)
		assert.Equal(t, schema.StageOffer, row.Student.Stage)
		assert.True(t, row.Student.IsHighPriority)
	})

	t.Run("BlankLinesSkippedButCounted", func(t *testing.T) {
		input := "firstName,lastName,email\n" +
			"A,B,a@example.com\n" +
			",,\n" +
			"C,D,c@example.com\n"

		rows, err := student.ParseCSV(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, 2, rows[0].Line)
		assert.Equal(t, 4, rows[1].Line)
	})

	t.Run("ShortRecordLeavesMissingColumnsEmpty", func(t *testing.T) {
		input := "firstName,lastName,email,phone\nA,B,a@example.com\n"

		rows, err := student.ParseCSV(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Empty(t, rows[0].Student.Phone)
	})

	t.Run("BadBooleanMarksRow", func(t *testing.T) {
		input := "firstName,lastName,email,isHighPriority\nA,B,a@example.com,perhaps\n"

		rows, err := student.ParseCSV(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.ErrorContains(t, rows[0].Err, "perhaps")
	})

	t.Run("MalformedQuoteMarksRow", func(t *testing.T) {
		input := "firstName,lastName,email\n" +
			"A,\"B,a@example.com\n"

		rows, err := student.ParseCSV(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Error(t, rows[0].Err)
	})

	t.Run("EmptyFile", func(t *testing.T) {
		_, err := student.ParseCSV(strings.NewReader(""))
		assert.ErrorIs(t, err, student.ErrInvalidCSV)
	})

	t.Run("MissingRequiredColumn", func(t *testing.T) {
		_, err := student.ParseCSV(strings.NewReader("firstName,lastName\nA,B\n"))
		assert.ErrorIs(t, err, student.ErrInvalidCSV)
		assert.ErrorContains(t, err, "email")
	})
}
