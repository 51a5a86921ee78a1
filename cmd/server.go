package cmd

import (
	"github.com/spf13/cobra"
	"videoflix-transcoder/config"
	server2 "videoflix-transcoder/server"
)

func server(config *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "start http server and transcode workers",
		Run: func(cmd *cobra.Command, args []string) {
			server2.RunHttp(config)
		},
	}
}
