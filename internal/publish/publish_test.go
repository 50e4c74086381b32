package publish

import (
	"context"
	stdErrors "errors"
	"regexp"
	"testing"
	"time"

	"deploy-summary/internal/config"
	"deploy-summary/internal/errors"

	"github.com/DATA-DOG/go-sqlmock"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMessage = Message{
	RunID:     "5f1a3f5e-8d8f-4a4b-9a55-6f2a4b8f0c11",
	ChainID:   137,
	ChainName: "polygon",
	Payload:   []byte(`{"time": 1700000000}`),
}

type fakeKV struct {
	key   string
	value any
	ttl   time.Duration
	err   error
}

func (f *fakeKV) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	f.key, f.value, f.ttl = key, value, expiration
	cmd := redis.NewStatusCmd(ctx, "set", key, value)
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal("OK")
	}
	return cmd
}

func TestRedisSinkSetsChainKey(t *testing.T) {
	kv := &fakeKV{}
	sink := newRedisSink(kv, "deployments:", time.Hour)

	require.NoError(t, sink.Publish(context.Background(), testMessage))
	assert.Equal(t, "deployments:137", kv.key)
	assert.Equal(t, testMessage.Payload, kv.value)
	assert.Equal(t, time.Hour, kv.ttl)
	assert.NoError(t, sink.Close())
}

func TestRedisSinkPropagatesError(t *testing.T) {
	sink := newRedisSink(&fakeKV{err: stdErrors.New("READONLY")}, "deployments:", 0)
	assert.ErrorContains(t, sink.Publish(context.Background(), testMessage), "READONLY")
}

func TestMySQLSinkUpsertsRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS deployment_summaries")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO deployment_summaries (chain_id, chain_name, run_id, summary)")).
		WithArgs(int64(137), "polygon", testMessage.RunID, string(testMessage.Payload)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectClose()

	sink, err := newMySQLSink(context.Background(), db, "deployment_summaries")
	require.NoError(t, err)
	require.NoError(t, sink.Publish(context.Background(), testMessage))
	require.NoError(t, sink.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLSinkRejectsBadTable(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = newMySQLSink(context.Background(), db, "summaries; DROP TABLE x")
	assert.Error(t, err)
}

type fakeChannel struct {
	exchange, key string
	msg           amqp.Publishing
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return nil
}

func TestRabbitMQSinkPublishesPersistentJSON(t *testing.T) {
	ch := &fakeChannel{}
	sink := newRabbitMQSink(ch, "deployments", "deployments.parsed")

	require.NoError(t, sink.Publish(context.Background(), testMessage))
	assert.Equal(t, "deployments", ch.exchange)
	assert.Equal(t, "deployments.parsed", ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
	assert.Equal(t, testMessage.RunID, ch.msg.MessageId)
	assert.Equal(t, int64(137), ch.msg.Headers["chain_id"])
	assert.Equal(t, testMessage.Payload, ch.msg.Body)
	assert.NoError(t, sink.Close())
}

type recordingSink struct {
	name   string
	err    error
	calls  *[]string
	closed bool
}

func (r *recordingSink) Name() string { return r.name }

func (r *recordingSink) Publish(context.Context, Message) error {
	*r.calls = append(*r.calls, r.name)
	return r.err
}

func (r *recordingSink) Close() error {
	r.closed = true
	return nil
}

func TestPublisherStopsAtFirstFailure(t *testing.T) {
	var calls []string
	first := &recordingSink{name: "first", calls: &calls}
	second := &recordingSink{name: "second", calls: &calls, err: stdErrors.New("down")}
	third := &recordingSink{name: "third", calls: &calls}
	p := New(first, second, third)

	err := p.Publish(context.Background(), testMessage)
	require.ErrorIs(t, err, errors.ErrPublishFailure)
	assert.Equal(t, []string{"first", "second"}, calls)
	assert.Equal(t, []string{"first", "second", "third"}, p.Sinks())

	require.NoError(t, p.Close())
	assert.True(t, first.closed && second.closed && third.closed)
}

func TestFromConfigDisabledIsEmpty(t *testing.T) {
	p, err := FromConfig(context.Background(), config.Default().Publish)
	require.NoError(t, err)
	assert.Empty(t, p.Sinks())
	require.NoError(t, p.Publish(context.Background(), testMessage))
}

func TestFromConfigRejectsMissingAddress(t *testing.T) {
	cfg := config.Default().Publish
	cfg.Redis.Enabled = true

	_, err := FromConfig(context.Background(), cfg)
	assert.Error(t, err)
}
