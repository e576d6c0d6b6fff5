package utils

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty string", input: "", expected: nil},
		{name: "whitespace only", input: "  , ,", expected: nil},
		{name: "single value", input: "http://localhost:3000", expected: []string{"http://localhost:3000"}},
		{name: "trims values", input: " IBM, AAPL ,,MSFT ", expected: []string{"IBM", "AAPL", "MSFT"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseCSV(tt.input))
		})
	}
}

func TestNormalizeSymbol(t *testing.T) {
	assert.Equal(t, "IBM", NormalizeSymbol(" ibm "))
	assert.Equal(t, "SHEL.LON", NormalizeSymbol("shel.lon"))
}

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	var km KeyedMutex
	var wg sync.WaitGroup
	counter := 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock("IBM")
			defer unlock()
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Empty(t, km.locks)
}

func TestKeyedMutex_DifferentKeysIndependent(t *testing.T) {
	var km KeyedMutex
	unlockA := km.Lock("A")

	done := make(chan struct{})
	go func() {
		unlock := km.Lock("B")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on B blocked by lock on A")
	}
	unlockA()
}

func TestTimer_Stop(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)

	timer := NewTimer("daily_sync", log)
	d := timer.Stop(map[string]int{"synced": 3})

	assert.GreaterOrEqual(t, int64(d), int64(0))
	assert.Contains(t, buf.String(), `"operation":"daily_sync"`)
	assert.Contains(t, buf.String(), `"synced":3`)
}
