package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/open-control-systems/mdnssd/components/mdnssd"
)

func newPublishCmd() *cobra.Command {
	var (
		name     string
		svcType  string
		protocol string
		port     int
		subtypes []string
		txt      map[string]string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Advertise a service over mDNS until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			handle, err := newHandle()
			if err != nil {
				return err
			}
			defer handle.Destroy()

			svc, err := handle.Publish(mdnssd.ServiceOptions{
				Name:     name,
				Type:     svcType,
				Protocol: mdnssd.Protocol(protocol),
				Port:     port,
				Subtypes: subtypes,
				TXT:      txt,
			})
			if err != nil {
				return fmt.Errorf("publish: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "published %s on %s:%d\n", svc.FQDN, svc.Host, svc.Port)

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			<-ctx.Done()

			handle.UnpublishAll()

			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "service instance name (required)")
	cmd.Flags().StringVar(&svcType, "type", "", "application protocol name, e.g. http (required)")
	cmd.Flags().StringVar(&protocol, "protocol", string(mdnssd.ProtocolTCP), "transport protocol: tcp or udp")
	cmd.Flags().IntVar(&port, "port", 0, "service port (required)")
	cmd.Flags().StringSliceVar(&subtypes, "subtype", nil, "optional subtype label, repeatable")
	cmd.Flags().StringToStringVar(&txt, "txt", nil, "TXT key=value pair, repeatable")

	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("type")
	cmd.MarkFlagRequired("port")

	return cmd
}
