package store_test

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"gitlab.com/arcanecrypto/noded/build"
	"gitlab.com/arcanecrypto/noded/internal/encoding"
	"gitlab.com/arcanecrypto/noded/internal/store"
	"gitlab.com/arcanecrypto/noded/testutil"
)

var testStore = testutil.InitStore(testutil.GetDatabaseConfig("store"))

func TestMain(m *testing.M) {
	build.SetLogLevels(logrus.WarnLevel)
	os.Exit(m.Run())
}

func TestAddAndGetIncoming(t *testing.T) {
	t.Parallel()

	hash := uuid.New().String()
	now := time.Now().Round(time.Second)
	origin := encoding.OriginInvoice{Request: "lnbc1..."}

	inserted, err := testStore.AddIncoming("preimage-"+hash, hash, origin, now)
	require.NoError(t, err)
	require.Equal(t, hash, inserted.PaymentHash)
	require.Nil(t, inserted.Received)

	got, err := testStore.Get(hash)
	require.NoError(t, err)

	if diff := cmp.Diff(inserted, got, cmpopts.EquateApproxTime(time.Second)); diff != "" {
		t.Fatalf("Get() mismatch (-inserted +got):\n%s", diff)
	}
}

func TestReceiveUnionsPartsAcrossCalls(t *testing.T) {
	t.Parallel()

	hash := uuid.New().String()
	now := time.Now().Round(time.Second)
	_, err := testStore.AddIncoming("preimage-"+hash, hash, encoding.OriginInvoice{Request: "lnbc1..."}, now)
	require.NoError(t, err)

	first := encoding.ReceivedWithLightningPayment{AmountSat: 1000}
	require.NoError(t, testStore.Receive(hash, []encoding.ReceivedWith{first}, now))

	second := encoding.ReceivedWithLightningPayment{AmountSat: 2000}
	require.NoError(t, testStore.Receive(hash, []encoding.ReceivedWith{second}, now.Add(time.Minute)))

	got, err := testStore.Get(hash)
	require.NoError(t, err)
	require.NotNil(t, got.Received)
	require.Equal(t, []encoding.ReceivedWith{first, second}, got.Received.ReceivedWith)
	// ReceivedAt is established on the first call and never overwritten.
	require.True(t, got.Received.ReceivedAt.Equal(now))
}

func TestSetLockedAndSetConfirmedStampPerPartTimestamps(t *testing.T) {
	t.Parallel()

	hash := uuid.New().String()
	now := time.Now().Round(time.Second)
	_, err := testStore.AddIncoming("preimage-"+hash, hash, encoding.OriginInvoice{Request: "lnbc1..."}, now)
	require.NoError(t, err)

	parts := []encoding.ReceivedWith{
		encoding.ReceivedWithNewChannel{AmountSat: 50_000, ChannelId: "chan1", FundingTxId: "tx1", IsOpener: true},
		encoding.ReceivedWithSpliceIn{AmountSat: 10_000, ChannelId: "chan2", FundingTxId: "tx2"},
		encoding.ReceivedWithLightningPayment{AmountSat: 500},
	}
	require.NoError(t, testStore.Receive(hash, parts, now))

	confirmedAt := now.Add(time.Minute).Round(time.Second)
	require.NoError(t, testStore.SetConfirmed(hash, confirmedAt))

	got, err := testStore.Get(hash)
	require.NoError(t, err)
	require.NotNil(t, got.Received)

	newChannel := got.Received.ReceivedWith[0].(encoding.ReceivedWithNewChannel)
	require.NotNil(t, newChannel.ConfirmedAt)
	require.True(t, newChannel.ConfirmedAt.Equal(confirmedAt))
	require.Nil(t, newChannel.LockedAt)

	spliceIn := got.Received.ReceivedWith[1].(encoding.ReceivedWithSpliceIn)
	require.NotNil(t, spliceIn.ConfirmedAt)
	require.True(t, spliceIn.ConfirmedAt.Equal(confirmedAt))

	lockedAt := now.Add(2 * time.Minute).Round(time.Second)
	require.NoError(t, testStore.SetLocked(hash, lockedAt))

	got, err = testStore.Get(hash)
	require.NoError(t, err)

	newChannel = got.Received.ReceivedWith[0].(encoding.ReceivedWithNewChannel)
	require.NotNil(t, newChannel.LockedAt)
	require.True(t, newChannel.LockedAt.Equal(lockedAt))
	// ConfirmedAt set by the earlier call is preserved.
	require.NotNil(t, newChannel.ConfirmedAt)
	require.True(t, newChannel.ConfirmedAt.Equal(confirmedAt))

	spliceIn = got.Received.ReceivedWith[1].(encoding.ReceivedWithSpliceIn)
	require.NotNil(t, spliceIn.LockedAt)
	require.True(t, spliceIn.LockedAt.Equal(lockedAt))

	// SetLocked bumps receivedAt; the lightning-payment part is untouched.
	require.True(t, got.Received.ReceivedAt.Equal(lockedAt))
	require.Equal(t, encoding.ReceivedWithLightningPayment{AmountSat: 500}, got.Received.ReceivedWith[2])
}

func TestDeleteRequiresExistingRow(t *testing.T) {
	t.Parallel()

	deleted, err := testStore.Delete(uuid.New().String())
	require.NoError(t, err)
	require.False(t, deleted)
}

func TestAddOutgoingAndCompletePayment(t *testing.T) {
	t.Parallel()

	now := time.Now().Round(time.Second)
	details := encoding.OutgoingDetailsNormal{PaymentRequest: "lnbc1..."}
	payment, err := testStore.AddOutgoing("03abc", 5000, details, nil, now)
	require.NoError(t, err)
	require.Equal(t, encoding.OutgoingStatusPending{}, payment.Status)
	require.Empty(t, payment.Parts)

	changed, err := testStore.CompletePayment(payment.ID, encoding.OutgoingStatusSucceededOffChain{
		Preimage: "abcd", FeesPaid: 12,
	}, now.Add(time.Second))
	require.NoError(t, err)
	require.True(t, changed)

	got, err := testStore.GetPayment(payment.ID)
	require.NoError(t, err)
	require.Equal(t, encoding.OutgoingStatusSucceededOffChain{Preimage: "abcd", FeesPaid: 12}, got.Status)
	require.NotNil(t, got.CompletedAt)
}

func TestCompletePaymentUnknownIDReportsNoChange(t *testing.T) {
	t.Parallel()

	changed, err := testStore.CompletePayment(uuid.New(), encoding.OutgoingStatusFailed{Reason: "no route"}, time.Now())
	require.NoError(t, err)
	require.False(t, changed)
}

func TestSucceededOffChainFiltersFailedParts(t *testing.T) {
	t.Parallel()

	now := time.Now().Round(time.Second)
	parts := []store.Part{
		{AmountSat: 1000, Route: nil, CreatedAt: now, Status: encoding.PartStatusFailed{Code: "no_route"}},
		{AmountSat: 4000, Route: nil, CreatedAt: now, Status: encoding.PartStatusSucceeded{Preimage: "ab"}},
	}
	payment, err := testStore.AddOutgoing("03abc", 5000, encoding.OutgoingDetailsNormal{PaymentRequest: "lnbc1..."}, parts, now)
	require.NoError(t, err)

	_, err = testStore.CompletePayment(payment.ID, encoding.OutgoingStatusSucceededOffChain{Preimage: "ab", FeesPaid: 3}, now)
	require.NoError(t, err)

	got, err := testStore.GetPayment(payment.ID)
	require.NoError(t, err)
	require.Len(t, got.Parts, 1)
	require.Equal(t, int64(4000), got.Parts[0].AmountSat)
}

func TestMetadataRoundTripsByID(t *testing.T) {
	t.Parallel()

	hash := uuid.New().String()
	inserted, err := testStore.AddIncoming("preimage-"+hash, hash, encoding.OriginInvoice{Request: "lnbc1..."}, time.Now())
	require.NoError(t, err)

	externalID := "order-42"
	webhookURL := "https://example.com/hook"
	require.NoError(t, testStore.AddMetadata(store.PaymentMetadata{
		PaymentType: store.PaymentTypeIncoming,
		PaymentID:   inserted.ID.String(),
		ExternalID:  &externalID,
		WebhookURL:  &webhookURL,
	}))

	got, found := testStore.WebhookURLForPaymentHash(hash)
	require.True(t, found)
	require.Equal(t, webhookURL, got)
}

func TestWebhookURLForPaymentHashMissing(t *testing.T) {
	t.Parallel()

	_, found := testStore.WebhookURLForPaymentHash(uuid.New().String())
	require.False(t, found)
}
