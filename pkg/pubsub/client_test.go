package pubsub

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/angelmondragon/loanledger/pkg/config"
)

func TestTopicResourceName(t *testing.T) {
	cases := []struct {
		name, project, topic, want string
	}{
		{"bare id", "proj", "loan-events", "projects/proj/topics/loan-events"},
		{"full name kept", "proj", "projects/other/topics/x", "projects/other/topics/x"},
		{"blank topic", "proj", "  ", ""},
		{"missing project", "", "loan-events", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TopicResourceName(tc.project, tc.topic))
		})
	}
}

func TestTopicNamesDeduplicates(t *testing.T) {
	names := TopicNames(config.PubSubConfig{LoanEventsTopic: "ledger", PaymentEventsTopic: " ledger "})
	assert.Equal(t, []string{"ledger"}, names)

	assert.Empty(t, TopicNames(config.PubSubConfig{}))
}
