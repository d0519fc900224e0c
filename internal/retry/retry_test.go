package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_ExplicitMarkers(t *testing.T) {
	transient := Classify(Transient(errors.New("engine timed out")))
	assert.Equal(t, ClassTransient, transient.Class)
	assert.Equal(t, "explicit_transient", transient.Reason)

	permanent := Classify(Permanent(errors.New("airdrop not found")))
	assert.Equal(t, ClassPermanent, permanent.Class)
	assert.Equal(t, "explicit_permanent", permanent.Reason)
}

func TestClassify_MarkerSurvivesWrapping(t *testing.T) {
	inner := Permanent(errors.New("project not found"))
	wrapped := fmt.Errorf("lookup: %w", inner)

	d := Classify(wrapped)
	assert.Equal(t, ClassPermanent, d.Class)
}

func TestClassify_RepresentativeRuntimeErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Class
	}{
		{"context deadline transient", context.DeadlineExceeded, ClassTransient},
		{"context canceled permanent", context.Canceled, ClassPermanent},
		{"unmarshal permanent", errors.New("json: cannot unmarshal string"), ClassPermanent},
		{"not found permanent", errors.New("row not found"), ClassPermanent},
		{"rate limit transient", errors.New("engine error: 429 too many requests"), ClassTransient},
		{"unknown defaults transient", errors.New("something odd happened"), ClassTransient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err).Class)
		})
	}
}

func TestDelay_Schedule(t *testing.T) {
	d1, ok := Delay(1)
	require.True(t, ok)
	assert.Equal(t, 180*time.Second, d1)

	d2, ok := Delay(2)
	require.True(t, ok)
	assert.Equal(t, 540*time.Second, d2)

	d3, ok := Delay(3)
	require.True(t, ok)
	assert.Equal(t, 1620*time.Second, d3)

	_, ok = Delay(4)
	assert.False(t, ok, "4th attempt must dead-letter, not retry")

	_, ok = Delay(0)
	assert.False(t, ok)
}

func TestMarkers_NilPassthrough(t *testing.T) {
	assert.NoError(t, Transient(nil))
	assert.NoError(t, Permanent(nil))
}
