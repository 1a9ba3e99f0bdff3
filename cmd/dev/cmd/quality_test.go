package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGotestsumArgs(t *testing.T) {
	args := gotestsumArgs("-race", "./...")
	assert.Equal(t, gotestsum, args[1])
	assert.Equal(t, []string{"--", "-race", "./..."}, args[len(args)-3:])
}

func TestQualityFlags(t *testing.T) {
	race, err := TestCmd().Flags().GetBool("race")
	assert.NoError(t, err)
	assert.True(t, race)

	config := IntegrationTestCmd().Flags().Lookup("config")
	if assert.NotNil(t, config) {
		assert.Equal(t, "", config.DefValue)
	}
}
