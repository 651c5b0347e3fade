/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/eslsoft/revise/internal/entity"
)

// settingsCmd shows or updates the per-user review policy.
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "查看或调整复习策略",
	Long: `不带参数时显示当前复习策略; 任意策略参数会在现有设置上修改并保存。

  revise settings --mode custom --review-ratio 0.7
  revise settings --scope all_learned --daily-goal 30
  revise settings --decks 1,2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cleanup, err := newContainer()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx := cmd.Context()
		user, err := resolveUser(ctx, c, flagUser)
		if err != nil {
			return err
		}

		settings, err := c.Settings.GetReviewSettings(ctx, user.ID)
		if err != nil {
			return err
		}

		changed := false
		if cmd.Flags().Changed("mode") {
			mode, _ := cmd.Flags().GetString("mode")
			settings.RatioMode = entity.RatioMode(mode)
			changed = true
		}
		if cmd.Flags().Changed("review-ratio") {
			settings.CustomReviewRatio, _ = cmd.Flags().GetFloat64("review-ratio")
			changed = true
		}
		if cmd.Flags().Changed("min-new-ratio") {
			settings.MinNewRatio, _ = cmd.Flags().GetFloat64("min-new-ratio")
			changed = true
		}
		if cmd.Flags().Changed("scope") {
			scope, _ := cmd.Flags().GetString("scope")
			settings.Scope = entity.ReviewScope(scope)
			changed = true
		}
		if cmd.Flags().Changed("decks") {
			decks, _ := cmd.Flags().GetInt64Slice("decks")
			settings.SelectedDeckIDs = decks
			settings.SelectAllDecks = len(decks) == 0
			changed = true
		}
		if cmd.Flags().Changed("all-decks") {
			settings.SelectAllDecks, _ = cmd.Flags().GetBool("all-decks")
			changed = true
		}
		if cmd.Flags().Changed("daily-goal") {
			settings.DailyGoal, _ = cmd.Flags().GetInt32("daily-goal")
			changed = true
		}

		if changed {
			settings, err = c.Settings.UpdateReviewSettings(ctx, user.ID, settings)
			if err != nil {
				return err
			}
			cmd.Println("设置已更新。")
		}

		printSettings(cmd, settings)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.Flags().String("mode", "", "配比模式: normal 或 custom")
	settingsCmd.Flags().Float64("review-ratio", 0, "custom 模式下复习卡占比 [0, 1]")
	settingsCmd.Flags().Float64("min-new-ratio", 0, "normal 模式下新卡占比下限 [0, 1]")
	settingsCmd.Flags().String("scope", "", "取卡范围: selected_decks_only 或 all_learned")
	settingsCmd.Flags().Int64Slice("decks", nil, "所选卡组 ID 列表 (空列表等价于全部卡组)")
	settingsCmd.Flags().Bool("all-decks", false, "忽略卡组列表, 从全部卡组取卡")
	settingsCmd.Flags().Int32("daily-goal", 0, "每日目标卡片数")
}

func printSettings(cmd *cobra.Command, s *entity.ReviewSettings) {
	cmd.Printf("配比模式: %s\n", s.RatioMode)
	if s.RatioMode == entity.RatioModeCustom {
		cmd.Printf("  复习占比: %.0f%%\n", s.CustomReviewRatio*100)
	} else {
		cmd.Printf("  新卡占比下限: %.0f%%\n", s.MinNewRatio*100)
	}
	switch {
	case s.Scope == entity.ScopeAllLearned:
		cmd.Println("取卡范围: 仅已学卡片 (不引入新卡)")
	case s.SelectAllDecks || len(s.SelectedDeckIDs) == 0:
		cmd.Println("取卡范围: 全部卡组")
	default:
		ids := lo.Map(s.SelectedDeckIDs, func(id int64, _ int) string { return strconv.FormatInt(id, 10) })
		cmd.Printf("取卡范围: 卡组 %s\n", strings.Join(ids, ", "))
	}
	cmd.Printf("每日目标: %d 张\n", s.DailyGoal)
}
