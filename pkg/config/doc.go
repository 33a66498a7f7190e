/*
Package config loads the gitopssettings configuration file.

	            +-------------+
	            |   Default   |
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+----+ +-----+----+ +-----+----+
	|   YAML   | |   JSON   | |   HCL    |
	+----------+ +----------+ +----------+

🎯 Purpose:
- Starts from Default and lets a file override any subset of values
- Picks the format from the file extension
- Validates intervals, the hash algorithm and extension ignore patterns

🔄 Flow:
1. LoadOrDefault resolves the path (--config or the user config directory)
2. A missing default file means defaults
3. The registered Parser decodes over the defaults
4. Validate rejects bad values and cleans paths

🔍 Example:

	cfg, err := config.LoadOrDefault(ctx, "")
	if err != nil {
		return err
	}
	if cfg.Synchronize.Extensions {
		// ...
	}
*/
package config
