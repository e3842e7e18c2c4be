package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWizardHappyPath(t *testing.T) {
	w := NewWizard(false)
	assert.Equal(t, StepDeliveryInfo, w.Step())

	require.NoError(t, w.Advance(nil, false))
	assert.Equal(t, StepReview, w.Step())

	require.NoError(t, w.Advance(nil, false))
	assert.Equal(t, StepPayment, w.Step())

	require.NoError(t, w.Advance(nil, false))
	assert.Equal(t, StepSubmitted, w.Step())
}

func TestWizardBlockedByFieldErrors(t *testing.T) {
	w := NewWizard(false)

	err := w.Advance(map[string]string{"phone": "invalid"}, false)
	assert.ErrorIs(t, err, ErrStepBlocked)
	assert.Equal(t, StepDeliveryInfo, w.Step())
}

func TestWizardRequiresOTPBeforeSubmit(t *testing.T) {
	w := NewWizard(true)
	require.NoError(t, w.Advance(nil, false))
	require.NoError(t, w.Advance(nil, false))

	err := w.Advance(nil, false)
	assert.ErrorIs(t, err, ErrOTPRequired)
	assert.Equal(t, StepPayment, w.Step())

	require.NoError(t, w.Advance(nil, true))
	assert.Equal(t, StepSubmitted, w.Step())
}

func TestWizardBack(t *testing.T) {
	w := NewWizard(false)

	assert.ErrorIs(t, w.Back(), ErrCannotGoBack)

	require.NoError(t, w.Advance(nil, false))
	require.NoError(t, w.Back())
	assert.Equal(t, StepDeliveryInfo, w.Step())
}

func TestWizardSubmittedIsTerminal(t *testing.T) {
	w := NewWizard(false)
	require.NoError(t, w.Advance(nil, false))
	require.NoError(t, w.Advance(nil, false))
	require.NoError(t, w.Advance(nil, false))

	assert.ErrorIs(t, w.Advance(nil, false), ErrFlowFinished)
	assert.ErrorIs(t, w.Back(), ErrFlowFinished)
}
