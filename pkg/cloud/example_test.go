package cloud_test

import (
	"context"
	"fmt"

	"github.com/skybridge/skybridge/pkg/cloud"
)

// ExampleIterator shows how any marker-paginated list call is consumed as a
// single flat sequence.
func ExampleIterator() {
	pages := map[string]*cloud.ResultPage[string]{
		"":  {Data: []string{"i-1", "i-2"}, Marker: "a", IsTruncated: true},
		"a": {Data: []string{"i-3"}, IsTruncated: false},
	}
	src := cloud.PageFunc[string](func(_ context.Context, marker string) (*cloud.ResultPage[string], error) {
		return pages[marker], nil
	})

	it := cloud.NewIterator[string](src)
	for it.Next(context.Background()) {
		fmt.Println(it.Item())
	}
	// Output:
	// i-1
	// i-2
	// i-3
}

// ExampleLaunchConfig builds a launch configuration with a root volume, a
// scratch disk, and two network interfaces.
func ExampleLaunchConfig() {
	lc := cloud.NewLaunchConfig()
	if err := lc.AddVolumeDevice(cloud.VolumeDevice{IsRoot: true, SizeGB: 40}); err != nil {
		fmt.Println(err)
		return
	}
	lc.AddEphemeralDevice()
	lc.AddNetworkInterface("net-frontend")
	lc.AddNetworkInterface("net-backend")

	fmt.Println(len(lc.BlockDevices), len(lc.NetworkInterfaces))

	err := lc.AddVolumeDevice(cloud.VolumeDevice{IsRoot: true, SizeGB: 10})
	fmt.Println(cloud.IsInvalidConfig(err))
	// Output:
	// 2 2
	// true
}
