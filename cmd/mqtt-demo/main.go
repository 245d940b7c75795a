// Command mqtt-demo is a small CLI exercising the mqtt package: connect,
// subscribe and print incoming publishes, or publish a single message.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gonzalop/mqttv5/clientstate"
	"github.com/gonzalop/mqttv5/internal/packets"
	"github.com/gonzalop/mqttv5/mqtt"
)

var (
	flagConfigPath string
	flagBroker     string
	flagClientID   string
	flagTopic      string
	flagQoS        uint8
	flagKeepAlive  time.Duration
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mqtt-demo",
		Short: "Exercise the mqttv5 client against a broker",
	}
	root.PersistentFlags().StringVar(&flagConfigPath, "config", "", "YAML config file (overridden by flags)")
	root.PersistentFlags().StringVar(&flagBroker, "broker", "localhost:1883", "broker address, host:port")
	root.PersistentFlags().StringVar(&flagClientID, "client-id", "", "client identifier (default: random uuid)")
	root.PersistentFlags().StringVar(&flagTopic, "topic", "mqtt-demo/messages", "topic filter/name")
	root.PersistentFlags().Uint8Var(&flagQoS, "qos", 1, "QoS level (0 or 1)")
	root.PersistentFlags().DurationVar(&flagKeepAlive, "keep-alive", 30*time.Second, "keep-alive interval")

	root.AddCommand(newSubscribeCmd(), newPublishCmd())
	return root
}

func resolvedConfig(cmd *cobra.Command) (*fileConfig, error) {
	cfg := &fileConfig{
		Broker:    flagBroker,
		ClientID:  flagClientID,
		Topic:     flagTopic,
		QoS:       flagQoS,
		KeepAlive: flagKeepAlive,
	}
	if flagConfigPath != "" {
		fileCfg, err := loadFileConfig(flagConfigPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		flags := cmd.Flags()
		if flags.Changed("broker") {
			fileCfg.Broker = flagBroker
		}
		if flags.Changed("client-id") {
			fileCfg.ClientID = flagClientID
		}
		if flags.Changed("topic") {
			fileCfg.Topic = flagTopic
		}
		if flags.Changed("qos") {
			fileCfg.QoS = flagQoS
		}
		if flags.Changed("keep-alive") {
			fileCfg.KeepAlive = flagKeepAlive
		}
		cfg = fileCfg
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "mqtt-demo-" + uuid.NewString()
	}
	return cfg, nil
}

func dialAndConnect(ctx context.Context, cfg *fileConfig) (*mqtt.PollClient, error) {
	conn, err := net.Dial("tcp", cfg.Broker)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", cfg.Broker, err)
	}

	opts := []mqtt.Option{
		mqtt.WithClientID(cfg.ClientID),
		mqtt.WithKeepAlive(cfg.KeepAlive),
		mqtt.WithCleanStart(true),
	}
	if cfg.Username != "" {
		opts = append(opts, mqtt.WithCredentials(cfg.Username, cfg.Password))
	}

	client := mqtt.NewPollClient(conn, opts...)
	if err := client.Connect(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("connecting: %w", err)
	}
	return client, nil
}

func newSubscribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subscribe",
		Short: "Subscribe to a topic filter and print received messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := resolvedConfig(cmd)
			if err != nil {
				return err
			}

			client, err := dialAndConnect(ctx, cfg)
			if err != nil {
				return err
			}

			if _, err := client.Subscribe(ctx, cfg.Topic, packets.QoS(cfg.QoS)); err != nil {
				return fmt.Errorf("subscribing to %s: %w", cfg.Topic, err)
			}
			slog.Info("subscribed", "topic", cfg.Topic, "client_id", cfg.ClientID)

			return client.Run(ctx, func(_ context.Context, event *clientstate.ReceiveEvent) error {
				switch event.Kind {
				case clientstate.EventPublish, clientstate.EventPublishAndPuback:
					fmt.Printf("%s: %s\n", event.Publish.Topic, event.Publish.Payload)
				case clientstate.EventDisconnect:
					slog.Warn("broker disconnected", "reason", event.Disconnect.ReasonCode)
				}
				return nil
			})
		},
	}
}

func newPublishCmd() *cobra.Command {
	var message string
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a single message and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := resolvedConfig(cmd)
			if err != nil {
				return err
			}

			client, err := dialAndConnect(ctx, cfg)
			if err != nil {
				return err
			}

			runCtx, stopRun := context.WithCancel(ctx)
			defer stopRun()
			runErr := make(chan error, 1)
			go func() {
				runErr <- client.Run(runCtx, func(context.Context, *clientstate.ReceiveEvent) error { return nil })
			}()

			if _, err := client.Publish(runCtx, cfg.Topic, []byte(message), packets.QoS(cfg.QoS), false, nil); err != nil {
				return fmt.Errorf("publishing: %w", err)
			}
			if err := client.Disconnect(runCtx); err != nil {
				return fmt.Errorf("disconnecting: %w", err)
			}
			// Once Disconnect is flushed the write side closes the transport
			// and Run returns on its own; cancelling runCtx as well makes
			// sure it unwinds, then wait for Run to return before exiting.
			stopRun()
			<-runErr
			return nil
		},
	}
	cmd.Flags().StringVar(&message, "message", "", "message payload to publish")
	return cmd
}
