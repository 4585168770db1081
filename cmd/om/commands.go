package om

import (
	"encoding/json"
	"fmt"

	"github.com/rowan-kv/rowan/lib/collections/treemap"
	"github.com/spf13/cobra"
)

var (
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]
			if prev, replaced, err := omap.Insert(key, value); err != nil {
				return err
			} else if replaced {
				fmt.Printf("set successfully (previous value: %s)\n", prev)
			} else {
				fmt.Println("set successfully")
			}
			dirty = true
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if value, found, err := omap.Get(key); err != nil {
				return err
			} else {
				fmt.Printf("key=%s, found=%v, value=%s\n", key, found, value)
			}
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]",
		Short: "Deletes a key value pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if _, removed, err := omap.Remove(key); err != nil {
				return err
			} else if removed {
				fmt.Println("delete successfully")
				dirty = true
			} else {
				fmt.Println("key not found")
			}
			return nil
		},
	}
	hasCmd = &cobra.Command{
		Use:   "has [key]",
		Short: "Checks if a key exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if found, err := omap.Contains(key); err != nil {
				return err
			} else {
				fmt.Printf("key=%s, found=%t\n", key, found)
			}
			return nil
		},
	}
	lenCmd = &cobra.Command{
		Use:   "len",
		Short: "Prints the number of entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("len=%d\n", omap.Len())
			return nil
		},
	}
	minCmd = &cobra.Command{
		Use:   "min",
		Short: "Prints the smallest key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printKeyResult(omap.MinKey())
		},
	}
	maxCmd = &cobra.Command{
		Use:   "max",
		Short: "Prints the largest key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printKeyResult(omap.MaxKey())
		},
	}
	floorCmd = &cobra.Command{
		Use:   "floor [key]",
		Short: "Prints the largest key <= the given key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printKeyResult(omap.FloorKey(args[0]))
		},
	}
	ceilCmd = &cobra.Command{
		Use:   "ceil [key]",
		Short: "Prints the smallest key >= the given key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printKeyResult(omap.CeilKey(args[0]))
		},
	}
	lowerCmd = &cobra.Command{
		Use:   "lower [key]",
		Short: "Prints the largest key strictly below the given key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printKeyResult(omap.LowerKey(args[0]))
		},
	}
	higherCmd = &cobra.Command{
		Use:   "higher [key]",
		Short: "Prints the smallest key strictly above the given key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printKeyResult(omap.HigherKey(args[0]))
		},
	}
	rangeCmd = &cobra.Command{
		Use:   "range [min] [max]",
		Short: "Prints all entries with min <= key < max ('-' for unbounded)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			min := treemap.Unbounded[string]()
			if args[0] != "-" {
				min = treemap.Included(args[0])
			}
			max := treemap.Unbounded[string]()
			if args[1] != "-" {
				max = treemap.Excluded(args[1])
			}

			it, err := omap.Range(min, max)
			if err != nil {
				return err
			}
			fmt.Printf("%d entries in range\n", it.Len())
			for {
				key, value, ok := it.Next()
				if !ok {
					break
				}
				fmt.Printf("%s=%s\n", key, value)
			}
			return it.Err()
		},
	}
	clearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Removes all entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			count := omap.Len()
			if err := omap.Clear(); err != nil {
				return err
			}
			fmt.Printf("cleared %d entries\n", count)
			dirty = count > 0
			return nil
		},
	}
	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Prints store statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := store.GetInfo()
			data, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return err
			}
			fmt.Printf("entries in map: %d\n", omap.Len())
			fmt.Println(string(data))
			return nil
		},
	}
)

// printKeyResult prints the outcome of a navigation query
func printKeyResult(key string, found bool, err error) error {
	if err != nil {
		return err
	}
	if !found {
		fmt.Println("no matching key")
		return nil
	}
	fmt.Printf("key=%s\n", key)
	return nil
}
