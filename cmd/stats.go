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
	"github.com/spf13/cobra"

	"github.com/eslsoft/revise/internal/entity"
	"github.com/eslsoft/revise/internal/repository"
)

// statsCmd prints pending work, today's progress and recent sessions.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "查看复习进度与最近会话",
	RunE: func(cmd *cobra.Command, args []string) error {
		recent, _ := cmd.Flags().GetInt32("sessions")

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

		pending, err := c.Review.PendingCounts(ctx, user.ID)
		if err != nil {
			return err
		}
		today, err := c.Review.TodayProgress(ctx, user.ID)
		if err != nil {
			return err
		}

		cmd.Printf("待复习 %d 张, 未学新卡 %d 张\n", pending.DueCount, pending.NewCount)
		mark := ""
		if today.GoalReached {
			mark = "  ✓ 已达成"
		}
		cmd.Printf("今日 (%s): 复习 %d 张, 答对 %d 张, 会话 %d 次, 目标 %d 张%s\n",
			today.Date, today.Reviewed, today.Correct, today.Sessions, today.Goal, mark)

		if recent <= 0 {
			return nil
		}
		sessions, total, err := c.Review.ListSessions(ctx, &repository.ListSessionQuery{
			Pagination: repository.Pagination{PageNo: 1, PageSize: recent},
			UserID:     user.ID,
		})
		if err != nil {
			return err
		}
		if total == 0 {
			cmd.Println("\n还没有任何会话记录。")
			return nil
		}

		loc := user.Location()
		cmd.Printf("\n最近会话 (共 %d 次):\n", total)
		for _, s := range sessions {
			cmd.Printf("  %s  %s  %2d 张 (新 %d/复 %d)  对 %d 错 %d\n",
				s.StartedAt.In(loc).Format("01-02 15:04"), sessionStatusLabel(s.Status),
				len(s.Cards), s.NewCount, s.ReviewCount, s.CorrectCount, s.WrongCount)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().Int32("sessions", 5, "显示最近会话条数 (0 表示不显示)")
}

func sessionStatusLabel(s entity.SessionStatus) string {
	switch s {
	case entity.SessionActive:
		return "进行中"
	case entity.SessionCompleted:
		return "已完成"
	case entity.SessionAbandoned:
		return "已放弃"
	default:
		return string(s)
	}
}
