package depot

import (
	"testing"

	"github.com/TheBitDrifter/table"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConfigDefaults(t *testing.T) {
	opts := Options{}.withDefaults()
	require.Equal(t, DefaultGrowthFactor, opts.GrowthFactor)
	require.Equal(t, DefaultInitialCapacity, opts.InitialCapacity)
	require.NotNil(t, opts.Logger)

	logger := zap.NewNop()
	opts = Options{GrowthFactor: 3, InitialCapacity: 4, Logger: logger}.withDefaults()
	require.Equal(t, 3.0, opts.GrowthFactor)
	require.Equal(t, 4, opts.InitialCapacity)
	require.Same(t, logger, opts.Logger)
}

func TestConfigSetters(t *testing.T) {
	defer func() {
		Config.SetGrowthFactor(DefaultGrowthFactor)
		Config.SetInitialCapacity(DefaultInitialCapacity)
		Config.SetLogger(nil)
	}()

	require.ErrorAs(t, Config.SetGrowthFactor(1), &GrowthFactorError{})
	require.NoError(t, Config.SetGrowthFactor(2))
	Config.SetInitialCapacity(4)
	logger := zap.NewNop()
	Config.SetLogger(logger)
	require.Same(t, logger, Config.Logger())

	sto := Factory.NewStorage(table.Factory.NewSchema())
	id, err := FactoryNewComponent[Health]().Register(sto, "health", 0)
	require.NoError(t, err)
	require.Equal(t, 4, sto.ComponentCapacity(id))

	entities, err := sto.NewEntities(5)
	require.NoError(t, err)
	for _, en := range entities {
		require.NoError(t, sto.AddComponent(en.Handle, id, Health{}))
	}
	require.Equal(t, 8, sto.ComponentCapacity(id))
}
