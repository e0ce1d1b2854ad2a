package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"jp8080ctl/midi"
	"jp8080ctl/params"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	switch os.Args[1] {
	case "list":
		err = listPorts()
	case "monitor":
		err = monitor(os.Args[2:])
	case "sysex":
		err = sendSysEx(os.Args[2:])
	case "decode":
		err = decode(os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("JP-8080 MIDI tools")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                       - List all MIDI ports")
	fmt.Println("  monitor <in-port>          - Decode incoming CC, Program Change and DT1")
	fmt.Println("  sysex <out-port> <key> <n> - Send one waveform DT1 (e.g. osc1_waveform 3)")
	fmt.Println("  decode <hex...>            - Decode a message given as hex bytes")
}

func listPorts() error {
	fmt.Println("(waiting up to 3 seconds...)")
	ports, err := midi.ListPorts(3 * time.Second)
	if err != nil {
		fmt.Println("Fix on macOS: sudo killall coreaudiod midiserver")
		return err
	}

	fmt.Println("=== MIDI Input Ports ===")
	for i, name := range ports.Inputs {
		fmt.Printf("  %d: %s\n", i, name)
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, name := range ports.Outputs {
		fmt.Printf("  %d: %s\n", i, name)
	}
	return nil
}

func monitor(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("monitor needs an input port name")
	}
	in, err := midi.FindInPort(args[0])
	if err != nil {
		return err
	}
	mon, err := midi.NewMonitor(in)
	if err != nil {
		return err
	}
	defer mon.Close()

	fmt.Printf("Monitoring %s (ctrl+c to stop)\n", mon.ID())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	for {
		select {
		case <-sig:
			return nil
		case line := <-mon.Lines():
			fmt.Printf("%10.3fs  %s\n", line.At.Seconds(), line.Text)
		}
	}
}

func sendSysEx(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: sysex <out-port> <key> <value>")
	}
	id, ok := params.ByKey(args[1])
	if !ok || !params.Get(id).IsChoice() {
		return fmt.Errorf("%q is not a waveform parameter", args[1])
	}
	value, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("bad value %q", args[2])
	}

	ev, ok := midi.EncodeWaveformSysEx(params.Get(id).Encoding.Address, value)
	if !ok {
		return fmt.Errorf("no DT1 address for %s", args[1])
	}

	send, err := midi.NewOutputs().Sender(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Sending % X\n", ev.Bytes())
	fmt.Println(midi.Describe(ev.Bytes()))
	return send(ev.Message())
}

func decode(args []string) error {
	raw, err := hex.DecodeString(strings.Join(strings.Fields(strings.Join(args, " ")), ""))
	if err != nil {
		return fmt.Errorf("bad hex: %v", err)
	}
	fmt.Println(midi.DescribeMessage(raw))
	return nil
}
