// Copyright 2026 The AccessHub Authors, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"github.com/spf13/cobra"
)

// NewRootCommand is the accesshub CLI entry.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "accesshub [command]",
		Short:        "accesshub is the internal service portal",
		Long:         `accesshub runs the internal service portal: authentication, the permission request workflow and the account registration workflow.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newPromoteCommand())

	return cmd
}
