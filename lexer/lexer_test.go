package lexer

import "testing"

func TestNewEmpty(t *testing.T) {
	lx := NewString("")
	if lx.CurrentChar() != EOF {
		t.Errorf("current = %d, want EOF", lx.CurrentChar())
	}
	if lx.Position() != 0 {
		t.Errorf("position = %d, want 0", lx.Position())
	}
	if lx.LineNo() != 1 {
		t.Errorf("line = %d, want 1", lx.LineNo())
	}
	if lx.ColNo() != 1 {
		t.Errorf("col = %d, want 1", lx.ColNo())
	}
}

func TestMatch(t *testing.T) {
	lx := NewString("ABCDEFG\nHIJK")

	if !lx.Match("ABCD") {
		t.Fatal("Match(ABCD) failed")
	}
	if lx.CurrentChar() != 'E' || lx.Position() != 4 || lx.LineNo() != 1 || lx.ColNo() != 5 {
		t.Errorf("after ABCD: c=%c pos=%d line=%d col=%d", lx.CurrentChar(), lx.Position(), lx.LineNo(), lx.ColNo())
	}

	if lx.Match("EFGG") {
		t.Fatal("Match(EFGG) should fail")
	}
	if lx.CurrentChar() != 'E' || lx.Position() != 4 || lx.LineNo() != 1 || lx.ColNo() != 5 {
		t.Error("failed match must restore the lexer state")
	}

	if !lx.Match("EFG\nH") {
		t.Fatal("Match(EFG\\nH) failed")
	}
	if lx.CurrentChar() != 'I' || lx.Position() != 9 || lx.LineNo() != 2 || lx.ColNo() != 2 {
		t.Errorf("after newline: c=%c pos=%d line=%d col=%d", lx.CurrentChar(), lx.Position(), lx.LineNo(), lx.ColNo())
	}

	if lx.Match("IJKKKKK") {
		t.Fatal("Match past EOF should fail")
	}
	if !lx.Match("IJK") {
		t.Fatal("Match(IJK) failed")
	}
	if lx.CurrentChar() != EOF || lx.Position() != 12 || lx.LineNo() != 2 || lx.ColNo() != 5 {
		t.Errorf("at EOF: c=%d pos=%d line=%d col=%d", lx.CurrentChar(), lx.Position(), lx.LineNo(), lx.ColNo())
	}
}

func TestLineColumnTracking(t *testing.T) {
	lx := NewString("a\tb\nc")
	// 'a' is column 1; the tab advances by eight.
	if lx.ColNo() != 1 {
		t.Errorf("col = %d, want 1", lx.ColNo())
	}
	lx.Consume() // tab
	if lx.ColNo() != 9 {
		t.Errorf("col after tab = %d, want 9", lx.ColNo())
	}
	lx.Consume() // 'b'
	lx.Consume() // newline
	if lx.LineNo() != 2 || lx.ColNo() != 0 {
		t.Errorf("after newline: line=%d col=%d, want 2, 0", lx.LineNo(), lx.ColNo())
	}
}

func TestNumbers(t *testing.T) {
	input := "0 0.0 1 1.0 1.00 -1 -1.0 -1.00 0.1 -0.1 1e0 1E0 1.0e0"
	want := []struct {
		text string
		typ  NumberType
	}{
		{"0", Integer},
		{"0.0", FloatingPoint},
		{"1", Integer},
		{"1.0", FloatingPoint},
		{"1.00", FloatingPoint},
		{"-1", Integer},
		{"-1.0", FloatingPoint},
		{"-1.00", FloatingPoint},
		{"0.1", FloatingPoint},
		{"-0.1", FloatingPoint},
		{"1e0", FloatingPoint},
		{"1E0", FloatingPoint},
		{"1.0e0", FloatingPoint},
	}

	lx := NewString(input)
	for i, w := range want {
		text, typ, err := lx.Number()
		if err != nil {
			t.Fatalf("token %d: %v", i, err)
		}
		if string(text) != w.text {
			t.Errorf("token %d: text = %q, want %q", i, text, w.text)
		}
		if typ != w.typ {
			t.Errorf("token %d (%s): type = %v, want %v", i, w.text, typ, w.typ)
		}
		lx.Consume()
	}
}

func TestNumberErrors(t *testing.T) {
	for _, input := range []string{"-", "01", "-01", "1.", "1e", "1e+"} {
		lx := NewString(input)
		if _, _, err := lx.Number(); err == nil {
			t.Errorf("Number(%q): expected an error", input)
		}
	}
}

func TestNumberErrorPosition(t *testing.T) {
	lx := NewString("x")
	lx.Consume() // hit EOF on line 1
	_, _, err := lx.Number()
	lerr, ok := err.(*Error)
	if !ok {
		t.Fatalf("error type %T, want *Error", err)
	}
	if lerr.Line != 1 {
		t.Errorf("error line = %d, want 1", lerr.Line)
	}
}

func TestQuotedStrings(t *testing.T) {
	input := `"" "a" "\"" "\\" "\n" "abcd" "123"`
	want := []string{``, `a`, `\"`, `\\`, `\n`, `abcd`, `123`}

	lx := NewString(input)
	for i, w := range want {
		got, err := lx.QuotedString()
		if err != nil {
			t.Fatalf("string %d: %v", i, err)
		}
		if string(got) != w {
			t.Errorf("string %d = %q, want %q", i, got, w)
		}
		lx.Consume()
	}
}

func TestQuotedStringPositionAfterEmpty(t *testing.T) {
	lx := NewString(`"" x`)
	if _, err := lx.QuotedString(); err != nil {
		t.Fatal(err)
	}
	if lx.Position() != 2 {
		t.Errorf("position = %d, want 2", lx.Position())
	}
}

func TestQuotedStringErrors(t *testing.T) {
	for _, input := range []string{`"abc`, `"\q"`} {
		lx := NewString(input)
		if _, err := lx.QuotedString(); err == nil {
			t.Errorf("QuotedString(%q): expected an error", input)
		}
	}
}
