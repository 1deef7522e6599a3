package catalog

// Builtin returns the shipped vendor knowledge base. Profiles are ordered:
// detection takes the first token match, so the vendors with the most
// specific tokens come before the loose ones, and generic stays last.
func Builtin() *Catalog {
	return New(
		Profile{
			ID:    "hikvision",
			Match: []string{"hikvision"},
			Paths: []string{"Streaming/Channels/101", "Streaming/Channels/102", "h264Preview_01_main", "h264Preview_01_sub"},
			Ports: []int{554, 10554},
			Defaults: []Credential{
				{User: "admin", Password: "12345"},
				{User: "admin", Password: "admin"},
				{User: "admin"},
			},
		},
		Profile{
			ID:    "dahua",
			Match: []string{"dahua", "general"},
			Paths: []string{"cam/realmonitor?channel=1&subtype=0", "cam/realmonitor?channel=1&subtype=1"},
			Ports: []int{554},
			Defaults: []Credential{
				{User: "admin", Password: "admin"},
				{User: "admin"},
			},
		},
		Profile{
			ID:    "axis",
			Match: []string{"axis"},
			Paths: []string{"axis-media/media.amp", "axis-media/media.amp?videocodec=h264"},
			Ports: []int{554},
			Defaults: []Credential{
				{User: "root", Password: "pass"},
				{User: "root", Password: "root"},
				{User: "root"},
			},
		},
		Profile{
			ID:    "reolink",
			Match: []string{"reolink"},
			Paths: []string{"Preview_01_main", "Preview_01_sub", "h264Preview_01_main", "h264Preview_01_sub"},
			Ports: []int{554},
			Defaults: []Credential{
				{User: "admin"},
			},
		},
		Profile{
			ID:    "uniview",
			Match: []string{"uniview", "unv", "uv"},
			Paths: []string{"media/video1", "media/video2", "media/video3"},
			Ports: []int{554},
			Defaults: []Credential{
				{User: "admin", Password: "123456"},
				{User: "admin"},
			},
		},
		Profile{
			ID:    "amcrest",
			Match: []string{"amcrest"},
			Paths: []string{"cam/realmonitor?channel=1&subtype=0", "cam/realmonitor?channel=1&subtype=1", "h264Preview_01_main", "h264Preview_01_sub"},
			Ports: []int{554},
			Defaults: []Credential{
				{User: "admin", Password: "admin"},
				{User: "admin"},
			},
		},
		Profile{
			ID:    "foscam",
			Match: []string{"foscam"},
			Paths: []string{"videoMain", "videoSub"},
			Ports: []int{88, 554},
			Defaults: []Credential{
				{User: "admin"},
				{User: "user", Password: "user"},
			},
		},
		Profile{
			ID:    "tapo",
			Match: []string{"tapo"},
			Paths: []string{"stream1", "stream2", "stream6", "stream7"},
			Ports: []int{554},
		},
		Profile{
			ID:    "hanwha",
			Match: []string{"hanwha", "wisenet", "samsung"},
			Paths: []string{"profile1/media.smp", "profile2/media.smp"},
			Ports: []int{554},
			Defaults: []Credential{
				{User: "admin", Password: "111111"},
				{User: "admin", Password: "4321"},
				{User: "admin"},
			},
		},
		Profile{
			ID:    "bosch",
			Match: []string{"bosch"},
			Paths: []string{"", "video?inst=1", "video?inst=2", "?inst=1", "?inst=2"},
			Ports: []int{554},
			Defaults: []Credential{
				{User: "admin", Password: "admin"},
				{User: "admin"},
			},
		},
		Profile{
			ID:    "unifi_protect",
			Match: []string{"unifi", "ubiquiti", "protect"},
			Paths: []string{""},
			Ports: []int{7447},
		},
		Profile{
			ID:    GenericID,
			Paths: []string{"", "live", "live.sdp", "h264", "h265", "stream", "stream1", "stream2", "0", "1", "video", "video.mp4", "unicast"},
			Ports: []int{554, 8554},
			Defaults: []Credential{
				{User: "admin", Password: "admin"},
				{User: "admin", Password: "12345"},
				{User: "admin"},
				{User: "user", Password: "user"},
			},
		},
	)
}
