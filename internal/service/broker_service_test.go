package service

import (
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
)

func TestRetryCount(t *testing.T) {
	assert.Equal(t, 0, RetryCount(nil))
	assert.Equal(t, 2, RetryCount(amqp.Table{RetryHeader: int32(2)}))
	assert.Equal(t, 3, RetryCount(amqp.Table{RetryHeader: int64(3)}))
	assert.Equal(t, 0, RetryCount(amqp.Table{RetryHeader: "3"}))
}
