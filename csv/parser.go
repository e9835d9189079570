package csv

import (
	"fmt"
	"math"
	"os"
	"strconv"
)

// rawField is one cell of the first parsing pass. A field with hasVal unset is NA.
type rawField struct {
	text   string
	hasVal bool
	typ    ColumnType
}

// fieldFromToken classifies a field token. Quoted fields are always
// strings; unquoted text is classified as bool, int, double, or string.
func fieldFromToken(t Token) rawField {
	f := rawField{text: t.Text, hasVal: true}
	if t.Type == TokenQuotedField {
		f.typ = String
		return f
	}
	f.typ = fieldTypeFromText(t.Text)
	return f
}

// fieldTypeFromText classifies an unquoted cell: the literals true/false
// are booleans; text that fully parses as a signed 32-bit integer is Int;
// text that fully parses as a double (strconv.ParseFloat syntax, which also
// accepts the Inf and NaN spellings) is Double; everything else is String.
func fieldTypeFromText(text string) ColumnType {
	if text == "true" || text == "false" {
		return Bool
	}
	if v, err := strconv.ParseInt(text, 10, 64); err == nil &&
		v <= math.MaxInt32 && v >= math.MinInt32 {
		return Int
	}
	if _, err := strconv.ParseFloat(text, 64); err == nil {
		return Double
	}
	return String
}

// pickLargerType promotes two cell types to the type able to hold both:
// Int < Double; Bool mixed with any numeric collapses to String; String
// dominates all.
func pickLargerType(t0, t1 ColumnType) ColumnType {
	if t0 == String || t1 == String {
		return String
	}
	if t0 == Bool && t1 == Bool {
		return Bool
	}
	if t0 == Bool || t1 == Bool {
		return String
	}
	if t0 == Double || t1 == Double {
		return Double
	}
	return Int
}

// Parser reads CSV tokens into records and materialises a data frame.
type Parser struct {
	clex  *Lexer
	token Token
}

// NewParser returns a parser reading from the given lexer.
func NewParser(clex *Lexer) (*Parser, error) {
	cp := &Parser{clex: clex}
	if err := cp.consume(); err != nil {
		return nil, err
	}
	return cp, nil
}

func (cp *Parser) consume() error {
	t, err := cp.clex.NextToken()
	if err != nil {
		return err
	}
	cp.token = t
	return nil
}

func (cp *Parser) isFieldToken() bool {
	return cp.token.Type == TokenField || cp.token.Type == TokenQuotedField
}

// parseRecord reads one record: fields separated by commas, terminated by
// a newline or EOF. Missing fields around commas become NA; a record with
// no cells at all is an error.
func (cp *Parser) parseRecord(recordNo int) ([]rawField, error) {
	if cp.token.Type == TokenEOR {
		return nil, fmt.Errorf("csv: empty record %d while parsing CSV", recordNo)
	}

	var fields []rawField
	if cp.isFieldToken() {
		fields = append(fields, fieldFromToken(cp.token))
		if err := cp.consume(); err != nil {
			return nil, err
		}
	} else if cp.token.Type == TokenComma {
		fields = append(fields, rawField{})
	} else {
		return nil, fmt.Errorf("csv: expecting a field, found %v", cp.token)
	}

	for cp.token.Type == TokenComma {
		if err := cp.consume(); err != nil {
			return nil, err
		}
		switch {
		case cp.isFieldToken():
			fields = append(fields, fieldFromToken(cp.token))
			if err := cp.consume(); err != nil {
				return nil, err
			}
		case cp.token.Type == TokenComma || cp.token.Type == TokenEOR || cp.token.Type == TokenEOF:
			fields = append(fields, rawField{})
		}
	}

	switch cp.token.Type {
	case TokenEOR:
		return fields, cp.consume()
	case TokenEOF:
		return fields, nil
	}
	return nil, fmt.Errorf("csv: expecting comma, found %v", cp.token)
}

// Parse reads all records and returns the materialised data frame. The
// first record is the header; every record must have the same number of
// fields.
func (cp *Parser) Parse() (*DataFrame, error) {
	if cp.token.Type == TokenEOF {
		return nil, fmt.Errorf("csv: can not parse empty CSV")
	}

	var records [][]rawField
	nColumns := 0
	for cp.token.Type != TokenEOF {
		record, err := cp.parseRecord(len(records))
		if err != nil {
			return nil, err
		}
		if nColumns == 0 {
			nColumns = len(record)
		} else if len(record) != nColumns {
			return nil, fmt.Errorf("csv: number of fields %d of record %d does not match the previous columns %d",
				len(record), len(records), nColumns)
		}
		records = append(records, record)
	}

	return materialise(records, nColumns)
}

// materialise infers the column types from the data rows and fills the
// frame. NA cells do not contribute to inference; a column of only NA
// cells is String.
func materialise(records [][]rawField, nColumns int) (*DataFrame, error) {
	ctypes := make([]ColumnType, nColumns)
	ctypeSet := make([]bool, nColumns)
	for _, record := range records[1:] {
		for c, field := range record {
			if !field.hasVal {
				continue
			}
			if !ctypeSet[c] {
				ctypes[c] = field.typ
				ctypeSet[c] = true
			} else {
				ctypes[c] = pickLargerType(ctypes[c], field.typ)
			}
		}
	}
	for c := range ctypes {
		if !ctypeSet[c] {
			ctypes[c] = String
		}
	}

	df := NewDataFrame()
	for c, field := range records[0] {
		label := ""
		if field.hasVal {
			label = field.text
		}
		df.AddColumn(ctypes[c], label)
	}

	for _, record := range records[1:] {
		r := df.AddRow()
		for c, field := range record {
			if !field.hasVal {
				continue
			}
			switch ctypes[c] {
			case String:
				df.SetString(r, c, field.text)
			case Bool:
				df.SetBool(r, c, field.text == "true")
			case Int:
				v, _ := strconv.Atoi(field.text)
				df.SetInt(r, c, v)
			case Double:
				v, _ := strconv.ParseFloat(field.text, 64)
				df.SetDouble(r, c, v)
			}
		}
	}
	return df, nil
}

// ParseString parses CSV text into a data frame.
func ParseString(text string) (*DataFrame, error) {
	cp, err := NewParser(NewLexerString(text))
	if err != nil {
		return nil, err
	}
	return cp.Parse()
}

// LoadCSV reads and parses the named file. With stringsAsFactors set,
// every String column is converted to a Factor column after the parse.
func LoadCSV(filename string, stringsAsFactors bool) (*DataFrame, error) {
	text, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("csv: reading %q: %w", filename, err)
	}
	cp, err := NewParser(NewLexer(text))
	if err != nil {
		return nil, err
	}
	df, err := cp.Parse()
	if err != nil {
		return nil, err
	}
	if stringsAsFactors {
		for c := 0; c < df.NColumns(); c++ {
			if df.Column(c).Type() == String {
				df.MakeFactor(c)
			}
		}
	}
	return df, nil
}
