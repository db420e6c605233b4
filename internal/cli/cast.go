package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forPelevin/scenarist/internal/types"
)

func newCastCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cast",
		Short: "Manage the character roster (the first character is the protagonist)",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List characters in roster order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, _, err := openSession(cmd)
			if err != nil {
				return err
			}
			roster := sess.Roster()
			if len(roster) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no characters registered")
				return nil
			}
			for i, c := range roster {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, describe(c, i == 0))
			}
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <name>",
		Short: fmt.Sprintf("Add a character (at most %d)", types.MaxRoster),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			age, _ := f.GetString("age")
			gender, _ := f.GetString("gender")
			appearance, _ := f.GetString("appearance")
			atmosphere, _ := f.GetString("atmosphere")
			background, _ := f.GetString("background")
			tone, _ := f.GetString("tone")

			sess, _, err := openSession(cmd)
			if err != nil {
				return err
			}
			c := types.Character{
				Name:       args[0],
				Age:        types.AgeBracket(age),
				Gender:     types.Gender(gender),
				Appearance: appearance,
				Atmosphere: atmosphere,
				Background: background,
				Tone:       tone,
			}
			if err := sess.AddCharacter(c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s (%d/%d)\n", strings.TrimSpace(args[0]), len(sess.Roster()), types.MaxRoster)
			return nil
		},
	}
	ages := make([]string, 0, len(types.AgeBrackets))
	for _, a := range types.AgeBrackets {
		ages = append(ages, string(a))
	}
	genders := make([]string, 0, len(types.Genders))
	for _, g := range types.Genders {
		genders = append(genders, string(g))
	}
	add.Flags().String("age", "", "Age bracket: "+strings.Join(ages, ", "))
	add.Flags().String("gender", "", "Gender: "+strings.Join(genders, ", "))
	add.Flags().String("appearance", "", "Appearance")
	add.Flags().String("atmosphere", "", "Atmosphere")
	add.Flags().String("background", "", "Background")
	add.Flags().String("tone", "", "Speaking tone")

	remove := &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a character; the next one moves up",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, _, err := openSession(cmd)
			if err != nil {
				return err
			}
			if err := sess.RemoveCharacter(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", strings.TrimSpace(args[0]))
			return nil
		},
	}

	cmd.AddCommand(list, add, remove)
	return cmd
}

func describe(c types.Character, protagonist bool) string {
	role := "質問者"
	if protagonist {
		role = "回答者・主人公"
	}
	parts := []string{c.Name + "（" + role + "）"}
	for _, v := range []string{string(c.Age), string(c.Gender), c.Appearance, c.Atmosphere, c.Background, c.Tone} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " / ")
}
