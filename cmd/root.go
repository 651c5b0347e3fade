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
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/eslsoft/revise/internal/app"
	"github.com/eslsoft/revise/internal/entity"
)

var (
	cfgPath  string
	flagUser string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "revise",
	Short: "基于 FSRS 的间隔重复复习调度器",
	Long: `revise 是一个基于 FSRS 的间隔重复学习调度器。

它负责组卷 (新卡与到期复习的配比)、记录答题并重新排期、维护错题本
与每日进度统计。数据默认存放在本地 sqlite 文件 (revise.db)，也可通过
配置切换到 PostgreSQL。`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "配置文件路径 (默认查找 ./revise.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagUser, "user", "demo", "操作的用户名")

	// Cobra also supports local flags, which will only run
	// when this action is called directly.
}

// newContainer builds the application container from the --config flag.
func newContainer() (*app.Container, func(), error) {
	return app.Initialize(cfgPath)
}

// resolveUser looks up the --user account, with a hint towards db-init
// when it does not exist yet.
func resolveUser(ctx context.Context, c *app.Container, username string) (*entity.User, error) {
	user, err := c.Users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("用户 %q 不存在, 请先运行 revise db-init --seed", username)
	}
	return user, nil
}

func bindFlagToViper(key string, flag *pflag.Flag) {
	if flag == nil {
		return
	}
	cobra.CheckErr(viper.BindPFlag(key, flag))
}
