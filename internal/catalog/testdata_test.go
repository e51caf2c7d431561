package catalog

const sampleConfig = `{
  "success": true,
  "data": {
    "tiktok": {
      "services": [
        {"id": 229, "name": "TikTok Views", "description": "1000 views", "available": true},
        {"id": 228, "name": "TikTok Followers", "description": "10 followers", "available": false},
        {"id": 232, "description": "20 likes", "available": true}
      ]
    },
    "youtube": {
      "services": [
        {"id": "yt-1", "name": "YouTube Views", "description": "50 views", "available": true}
      ]
    },
    "mastodon": {
      "services": []
    }
  },
  "version": 7
}`
