package extract

import (
	"reflect"
	"testing"
)

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		kinds []Kind
		texts []string
	}{
		{
			name:  "record line",
			in:    "0801CS001 Jane Doe 25",
			kinds: []Kind{KindEnrollment, KindSpace, KindWord, KindSpace, KindWord, KindSpace, KindNumber},
			texts: []string{"0801CS001", " ", "Jane", " ", "Doe", " ", "25"},
		},
		{
			name:  "decimal mark",
			in:    "21.5",
			kinds: []Kind{KindNumber},
			texts: []string{"21.5"},
		},
		{
			name:  "trailing dot is punctuation",
			in:    "25.",
			kinds: []Kind{KindNumber, KindOther},
			texts: []string{"25", "."},
		},
		{
			name:  "prefix glued to noise",
			in:    "x0801ME12D",
			kinds: []Kind{KindEnrollment},
			texts: []string{"0801ME12D"},
		},
		{
			name:  "slash splits",
			in:    "N/A",
			kinds: []Kind{KindWord, KindOther, KindWord},
			texts: []string{"N", "/", "A"},
		},
		{
			name:  "mixed run",
			in:    "25abc",
			kinds: []Kind{KindOther},
			texts: []string{"25abc"},
		},
		{
			name:  "non ascii letters are other",
			in:    "José",
			kinds: []Kind{KindWord, KindOther},
			texts: []string{"Jos", "é"},
		},
		{
			name:  "line breaks are space",
			in:    "Jane\r\n\tDoe",
			kinds: []Kind{KindWord, KindSpace, KindWord},
			texts: []string{"Jane", "\r\n\t", "Doe"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := Tokenize(tt.in)
			if got := kinds(toks); !reflect.DeepEqual(got, tt.kinds) {
				t.Fatalf("kinds = %v, want %v", got, tt.kinds)
			}
			for i, tok := range toks {
				if tok.Text != tt.texts[i] {
					t.Errorf("token %d = %q, want %q", i, tok.Text, tt.texts[i])
				}
			}
		})
	}
}

func TestTokenize_Positions(t *testing.T) {
	toks := Tokenize("ab 0801X")
	last := toks[len(toks)-1]
	if last.Kind != KindEnrollment || last.Pos != 3 {
		t.Fatalf("enrollment token = %+v, want pos 3", last)
	}
	toks = Tokenize("zz0801X")
	if toks[0].Pos != 2 || toks[0].Text != "0801X" {
		t.Fatalf("glued enrollment token = %+v", toks[0])
	}
}
