package httpapi_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"gitlab.com/arcanecrypto/noded/build"
	"gitlab.com/arcanecrypto/noded/internal/httpapi"
	"gitlab.com/arcanecrypto/noded/internal/liquidity"
	"gitlab.com/arcanecrypto/noded/internal/lnproto"
	"gitlab.com/arcanecrypto/noded/internal/peer"
	"gitlab.com/arcanecrypto/noded/testutil"
)

var testStore = testutil.InitStore(testutil.GetDatabaseConfig("httpapi"))

func TestMain(m *testing.M) {
	build.SetLogLevels(logrus.WarnLevel)
	os.Exit(m.Run())
}

// fakeEngine is a hand-rolled lnproto.ProtocolEngine double: every field
// pre-seeds the value its matching method returns, so each test configures
// only the behaviour it exercises.
type fakeEngine struct {
	channels []lnproto.Channel

	payResult lnproto.PayInvoiceResult
	payErr    error

	spliceResult lnproto.SpliceResult
	spliceErr    error

	createdPaymentHash string
	createdPreimage    string
	createdSerialized  string
	createInvoiceErr   error

	requestedAddress string

	setLiquidityCalls int
}

func (f *fakeEngine) Connect(ctx context.Context, connectTimeout, handshakeTimeout time.Duration) error {
	return nil
}
func (f *fakeEngine) Disconnect(ctx context.Context) error { return nil }
func (f *fakeEngine) Channels(ctx context.Context) ([]lnproto.Channel, error) {
	return f.channels, nil
}
func (f *fakeEngine) ConnectionState(ctx context.Context) <-chan lnproto.ConnectionState {
	ch := make(chan lnproto.ConnectionState)
	close(ch)
	return ch
}
func (f *fakeEngine) NodeEvents(ctx context.Context) <-chan lnproto.NodeEvent {
	ch := make(chan lnproto.NodeEvent)
	close(ch)
	return ch
}
func (f *fakeEngine) PayInvoice(ctx context.Context, invoice string, amountSatOverride *int64) (lnproto.PayInvoiceResult, error) {
	return f.payResult, f.payErr
}
func (f *fakeEngine) PayOffer(ctx context.Context, offer string, amountSat int64, fetchInvoiceTimeout time.Duration) (lnproto.PayInvoiceResult, error) {
	return f.payResult, f.payErr
}
func (f *fakeEngine) SpliceOut(ctx context.Context, channelID, address string, amountSat int64) (lnproto.SpliceResult, error) {
	return f.spliceResult, f.spliceErr
}
func (f *fakeEngine) SpliceCpfp(ctx context.Context, channelID string, feerateSatPerVbyte int64) (lnproto.SpliceResult, error) {
	return f.spliceResult, f.spliceErr
}
func (f *fakeEngine) Send(ctx context.Context, command interface{}) error { return nil }
func (f *fakeEngine) CreateInvoice(ctx context.Context, amountSat *int64, description, descriptionHash string, expiry time.Duration) (string, string, string, error) {
	return f.createdPaymentHash, f.createdPreimage, f.createdSerialized, f.createInvoiceErr
}
func (f *fakeEngine) RequestAddress(ctx context.Context) (string, error) {
	return f.requestedAddress, nil
}
func (f *fakeEngine) SetAutoLiquidityParams(ctx context.Context, maxAbsoluteFeeSat, maxRelativeFeeBasisPts, maxAllowedCreditSat int64) error {
	f.setLiquidityCalls++
	return nil
}
func (f *fakeEngine) RegisterFcmToken(ctx context.Context, token string) error { return nil }
func (f *fakeEngine) EstimateFeeForSpliceCpfp(ctx context.Context, channelID string, feerateSatPerVbyte int64) (int64, error) {
	return 0, nil
}
func (f *fakeEngine) RemoteFundingRates(ctx context.Context) ([]lnproto.LiquidityRate, error) {
	return nil, nil
}
func (f *fakeEngine) OnChainFeeratesFlow(ctx context.Context) lnproto.FeeratesFlow {
	ch := make(chan int64)
	close(ch)
	return ch
}
func (f *fakeEngine) FeeCreditFlow(ctx context.Context) lnproto.FeeCreditFlow {
	ch := make(chan int64)
	close(ch)
	return ch
}

// fakeResolver is a hand-rolled lnproto.AddressResolver double.
type fakeResolver struct {
	descriptor lnproto.LnurlDescriptor
	resolveErr error

	payInvoice  string
	payErr      error
	withdrawErr error
	authErr     error
	authSeed    []byte
}

func (f *fakeResolver) ResolveAddress(ctx context.Context, address string) (lnproto.LnurlDescriptor, error) {
	return f.descriptor, f.resolveErr
}
func (f *fakeResolver) ExecuteLnurl(ctx context.Context, lnurl string) (lnproto.LnurlDescriptor, error) {
	return f.descriptor, f.resolveErr
}
func (f *fakeResolver) GetLnurlPayInvoice(ctx context.Context, descriptor lnproto.LnurlDescriptor, amountMsat int64) (string, error) {
	return f.payInvoice, f.payErr
}
func (f *fakeResolver) SendWithdrawInvoice(ctx context.Context, descriptor lnproto.LnurlDescriptor, invoice string) error {
	return f.withdrawErr
}
func (f *fakeResolver) SignAndSendAuthRequest(ctx context.Context, descriptor lnproto.LnurlDescriptor, linkingKeySeed []byte) error {
	f.authSeed = linkingKeySeed
	return f.authErr
}

const (
	testPrimaryPassword  = "primary-secret"
	testReadOnlyPassword = "readonly-secret"
)

// newTestServer builds a Server wired against the shared test store, a
// fresh liquidity cell, and the given fakes. Each test gets its own engine/
// resolver double but shares the one migrated database, so payment rows
// are always created with a fresh uuid to avoid collisions.
func newTestServer(t *testing.T, engine *fakeEngine, resolver *fakeResolver) *httpapi.Server {
	t.Helper()

	supervisor := peer.New(engine, peer.Config{
		ConnectTimeout:   time.Second,
		HandshakeTimeout: time.Second,
		ReconnectDelay:   time.Second,
	})

	return httpapi.New(httpapi.Config{
		PrimaryPassword:  testPrimaryPassword,
		ReadOnlyPassword: testReadOnlyPassword,
		ExportsDir:       t.TempDir(),
		Network:          &chaincfg.RegressionNetParams,
	}, testStore, liquidity.NewCell(liquidity.Default()), supervisor, engine, resolver)
}

func newHash() string {
	return uuid.New().String()
}
