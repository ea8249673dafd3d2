package encoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncomingOriginRoundTrip(t *testing.T) {
	cases := []IncomingOrigin{
		OriginInvoice{Request: "lnbc1..."},
		OriginOffer{Metadata: []byte{0x01, 0x02}},
		OriginSwapIn{Address: "bc1qexample"},
		OriginOnChain{Txids: []string{"abc123", "def456"}},
	}
	for _, original := range cases {
		tag, blob, err := EncodeIncomingOrigin(original)
		require.NoError(t, err)

		decoded, err := DecodeIncomingOrigin(tag, blob)
		require.NoError(t, err)
		assert.Equal(t, original, decoded)
	}
}

func TestIncomingOriginTagsAreDistinct(t *testing.T) {
	tags := []string{
		TagIncomingOriginInvoiceV0,
		TagIncomingOriginOfferV0,
		TagIncomingOriginSwapInV0,
		TagIncomingOriginOnChainV0,
	}
	assertDistinct(t, tags)
}

func TestDecodeIncomingOriginUnknownTag(t *testing.T) {
	_, err := DecodeIncomingOrigin("NOT_A_REAL_TAG", []byte(`{}`))
	require.Error(t, err)
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "IncomingOrigin", decodeErr.Family)
}

func TestDecodeIncomingOriginCorruptBlob(t *testing.T) {
	_, err := DecodeIncomingOrigin(TagIncomingOriginInvoiceV0, []byte(`not json`))
	require.Error(t, err)
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.NotNil(t, decodeErr.Cause)
}

func TestReceivedWithRoundTrip(t *testing.T) {
	cases := []ReceivedWith{
		ReceivedWithLightningPayment{AmountSat: 1000},
		ReceivedWithNewChannel{AmountSat: 50_000, ServiceFeeSat: 500, MiningFeeSat: 300, ChannelId: "chan1"},
		ReceivedWithSpliceIn{AmountSat: 20_000, ServiceFeeSat: 100, MiningFeeSat: 200, ChannelId: "chan1", TxId: "tx1"},
		ReceivedWithAddedToFeeCredit{AmountSat: 10},
		ReceivedWithFeeCreditPayment{AmountSat: 500},
	}
	for _, original := range cases {
		tag, blob, err := EncodeReceivedWith(original)
		require.NoError(t, err)

		decoded, err := DecodeReceivedWith(tag, blob)
		require.NoError(t, err)
		assert.Equal(t, original, decoded)
	}
}

func TestReceivedWithAmountReceived(t *testing.T) {
	channel := ReceivedWithNewChannel{AmountSat: 50_000, ServiceFeeSat: 500, MiningFeeSat: 300}
	assert.EqualValues(t, 49_200, channel.AmountReceivedSat())

	feeCredit := ReceivedWithAddedToFeeCredit{AmountSat: 10}
	assert.EqualValues(t, 0, feeCredit.AmountReceivedSat())
}

func TestReceivedWithListRoundTrip(t *testing.T) {
	parts := []ReceivedWith{
		ReceivedWithLightningPayment{AmountSat: 100},
		ReceivedWithNewChannel{AmountSat: 900, ServiceFeeSat: 10, MiningFeeSat: 20, ChannelId: "c1"},
	}
	tag, blob, err := EncodeReceivedWithList(parts)
	require.NoError(t, err)

	decoded, err := DecodeReceivedWithList(tag, blob)
	require.NoError(t, err)
	assert.Equal(t, parts, decoded)
}

func TestReceivedWithListPreservesEmptyList(t *testing.T) {
	tag, blob, err := EncodeReceivedWithList(nil)
	require.NoError(t, err)

	decoded, err := DecodeReceivedWithList(tag, blob)
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestOutgoingDetailsRoundTrip(t *testing.T) {
	cases := []LightningOutgoingDetails{
		OutgoingDetailsNormal{PaymentRequest: "lnbc1..."},
		OutgoingDetailsKeySend{Preimage: "deadbeef"},
		OutgoingDetailsSwapOut{Address: "bc1q...", PaymentRequest: "lnbc1..."},
		OutgoingDetailsBlinded{PaymentRequest: "lno1...", PayerKey: "abcd"},
	}
	for _, original := range cases {
		tag, blob, err := EncodeOutgoingDetails(original)
		require.NoError(t, err)

		decoded, err := DecodeOutgoingDetails(tag, blob)
		require.NoError(t, err)
		assert.Equal(t, original, decoded)
	}
}

func TestPartStatusRoundTrip(t *testing.T) {
	cases := []PartStatus{
		PartStatusPending{},
		PartStatusSucceeded{Preimage: "deadbeef"},
		PartStatusFailed{Code: "TEMPORARY_CHANNEL_FAILURE", Remote: true},
	}
	for _, original := range cases {
		tag, blob, err := EncodePartStatus(original)
		require.NoError(t, err)

		decoded, err := DecodePartStatus(tag, blob)
		require.NoError(t, err)
		assert.Equal(t, original, decoded)
	}
}

func TestOutgoingStatusRoundTrip(t *testing.T) {
	cases := []OutgoingStatus{
		OutgoingStatusPending{},
		OutgoingStatusSucceededOffChain{Preimage: "deadbeef", FeesPaid: 42},
		OutgoingStatusFailed{Reason: "no route"},
	}
	for _, original := range cases {
		tag, blob, err := EncodeOutgoingStatus(original)
		require.NoError(t, err)

		decoded, err := DecodeOutgoingStatus(tag, blob)
		require.NoError(t, err)
		assert.Equal(t, original, decoded)
	}
}

func TestChannelCloseInfoRoundTrip(t *testing.T) {
	cases := []ChannelCloseInfo{
		CloseMutual{ClosingTxId: "tx1"},
		CloseLocal{ClosingTxId: "tx2"},
		CloseRemoteForce{ClosingTxId: "tx3"},
		CloseRevoked{ClosingTxId: "tx4"},
		CloseOther{Reason: "funding never confirmed"},
	}
	for _, original := range cases {
		tag, blob, err := EncodeChannelCloseInfo(original)
		require.NoError(t, err)

		decoded, err := DecodeChannelCloseInfo(tag, blob)
		require.NoError(t, err)
		assert.Equal(t, original, decoded)
	}
}

func TestLiquidityLeaseRoundTrip(t *testing.T) {
	original := LiquidityLease{
		AmountSat:              100_000,
		FeeSat:                 500,
		LeaseDurationBlocks:    4_032,
		LeaseExpiryBlockHeight: 800_000,
	}
	tag, blob, err := EncodeLiquidityLease(original)
	require.NoError(t, err)

	decoded, err := DecodeLiquidityLease(tag, blob)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestRouteRoundTrip(t *testing.T) {
	scid1, scid2 := uint64(123456), uint64(654321)
	hops := []RouteHop{
		{NodeA: [33]byte{1}, NodeB: [33]byte{2}, ShortChannelId: &scid1},
		{NodeA: [33]byte{2}, NodeB: [33]byte{3}, ShortChannelId: &scid2},
	}
	encoded := EncodeRoute(hops)
	decoded, err := DecodeRoute(encoded)
	require.NoError(t, err)
	assert.Equal(t, hops, decoded)
}

func TestRouteRoundTripEmptyShortChannelId(t *testing.T) {
	hops := []RouteHop{
		{NodeA: [33]byte{1}, NodeB: [33]byte{2}, ShortChannelId: nil},
	}
	encoded := EncodeRoute(hops)
	decoded, err := DecodeRoute(encoded)
	require.NoError(t, err)
	assert.Equal(t, hops, decoded)
	assert.Nil(t, decoded[0].ShortChannelId)
}

func TestRouteRoundTripEmpty(t *testing.T) {
	decoded, err := DecodeRoute("")
	require.NoError(t, err)
	assert.Nil(t, decoded)
}

func TestDecodeRouteMalformed(t *testing.T) {
	_, err := DecodeRoute("not-a-valid-hop")
	require.Error(t, err)
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
}

func TestDecodeRouteBadNodeLength(t *testing.T) {
	_, err := DecodeRoute("aabb:ccdd:123")
	require.Error(t, err)
}

// assertDistinct fails the test if any two tags in the given set are
// equal: tags are never reused across variants within a family.
func assertDistinct(t *testing.T, tags []string) {
	t.Helper()
	seen := map[string]bool{}
	for _, tag := range tags {
		assert.False(t, seen[tag], "tag %q used more than once", tag)
		seen[tag] = true
	}
}
