package om

import (
	"github.com/rowan-kv/rowan/cmd/util"
	"github.com/rowan-kv/rowan/lib/codec"
	"github.com/rowan-kv/rowan/lib/collections/treemap"
	"github.com/rowan-kv/rowan/lib/logging"
	"github.com/rowan-kv/rowan/lib/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	store  storage.Store
	omap   *treemap.TreeMap[string, string]
	dirty  bool
	logger = logging.GetLogger("cmd/om")

	// OrderedMapCommands represents the ordered-map command group
	OrderedMapCommands = &cobra.Command{
		Use:                "om",
		Short:              "Perform ordered-map operations against a snapshot file",
		PersistentPreRunE:  setupMap,
		PersistentPostRunE: teardownMap,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add common flags to the om command group
	key := "snapshot"
	OrderedMapCommands.PersistentFlags().String(key, "rowan.db", util.WrapString("Path to the snapshot file the store is loaded from and saved back to"))
	key = "namespace"
	OrderedMapCommands.PersistentFlags().String(key, "default", util.WrapString("Namespace of the ordered map inside the store"))

	// Add subcommands
	OrderedMapCommands.AddCommand(setCmd)
	OrderedMapCommands.AddCommand(getCmd)
	OrderedMapCommands.AddCommand(delCmd)
	OrderedMapCommands.AddCommand(hasCmd)
	OrderedMapCommands.AddCommand(lenCmd)
	OrderedMapCommands.AddCommand(minCmd)
	OrderedMapCommands.AddCommand(maxCmd)
	OrderedMapCommands.AddCommand(floorCmd)
	OrderedMapCommands.AddCommand(ceilCmd)
	OrderedMapCommands.AddCommand(lowerCmd)
	OrderedMapCommands.AddCommand(higherCmd)
	OrderedMapCommands.AddCommand(rangeCmd)
	OrderedMapCommands.AddCommand(clearCmd)
	OrderedMapCommands.AddCommand(statsCmd)
	OrderedMapCommands.AddCommand(perfTestCmd)
}

// setupMap loads the snapshot and attaches the ordered map to it
func setupMap(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	valCodec, err := util.GetValueCodec()
	if err != nil {
		return err
	}

	store, err = util.OpenStore()
	if err != nil {
		return err
	}

	namespace := viper.GetString("namespace")
	omap, err = treemap.NewOrdered[string, string](store, []byte(namespace), codec.String(), valCodec)
	if err != nil {
		store.Close()
		return err
	}

	dirty = false
	return nil
}

// teardownMap saves the snapshot back if the command mutated the map
func teardownMap(_ *cobra.Command, _ []string) error {
	defer store.Close()

	if !dirty {
		return nil
	}
	logger.Debugf("saving snapshot to %s", viper.GetString("snapshot"))
	return util.SaveStore(store)
}
