package godc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildParserOceanicReactProWhiteDispatchesToVEO250(t *testing.T) {
	p, err := BuildParser(FamilyOceanicAtom2, oceanicAtom2ReactProWhiteModel)
	require.NoError(t, err)
	assert.Equal(t, FamilyOceanicVEO250, p.Family())
}

func TestBuildParserOceanicAtom2DefaultModel(t *testing.T) {
	p, err := BuildParser(FamilyOceanicAtom2, 0)
	require.NoError(t, err)
	assert.Equal(t, FamilyOceanicAtom2, p.Family())
}

func TestBuildParserSuuntoVyperModel1DispatchesToEON(t *testing.T) {
	p, err := BuildParser(FamilySuuntoVyper, suuntoVyperEONModel)
	require.NoError(t, err)
	assert.Equal(t, FamilySuuntoEON, p.Family())
}

func TestBuildParserSuuntoVyperDefaultModel(t *testing.T) {
	p, err := BuildParser(FamilySuuntoVyper, 0x02)
	require.NoError(t, err)
	assert.Equal(t, FamilySuuntoVyper, p.Family())
}

func TestBuildParserGenericFamilies(t *testing.T) {
	for _, f := range []Family{
		FamilyReefnetSensus, FamilyReefnetSensusPro, FamilyReefnetSensusUltra,
		FamilyCressiEdy, FamilyCressiLeonardo,
		FamilyDiveriteNitekQ, FamilyCitizenAqualand, FamilyDivesystemIDive,
	} {
		p, err := BuildParser(f, 0)
		require.NoError(t, err, f.String())
		assert.Equal(t, f, p.Family())
	}
}

func TestBuildDeviceUnknownFamily(t *testing.T) {
	_, err := BuildDevice(NopContext(), Family(999), 0, &fakeTransport{})
	assert.Equal(t, KindUnsupported, KindOf(err))
}

func TestBuildDeviceEveryFamilyConstructs(t *testing.T) {
	for f := FamilySuuntoSolution; f <= FamilyCochranCommander; f++ {
		_, err := BuildDevice(NopContext(), f, 0, &fakeTransport{})
		assert.NoError(t, err, f.String())
	}
}

func TestBuildParserEveryFamilyConstructs(t *testing.T) {
	for f := FamilySuuntoSolution; f <= FamilyCochranCommander; f++ {
		_, err := BuildParser(f, 0)
		assert.NoError(t, err, f.String())
	}
}
