package checksum

import (
	"strings"
	"testing"
)

func TestSumMatchesSumReader(t *testing.T) {
	data := `{"name":"A"}` + "\n"
	got, err := SumReader(strings.NewReader(data))
	if err != nil {
		t.Fatalf("SumReader: %v", err)
	}
	if want := Sum([]byte(data)); got != want {
		t.Errorf("SumReader = %s, want %s", got, want)
	}
	if len(got) != 64 {
		t.Errorf("len = %d, want 64", len(got))
	}
}
